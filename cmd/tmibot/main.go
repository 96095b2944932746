package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/tmipkg/tmi"
	"github.com/tmipkg/tmi/adminapi"
	"github.com/tmipkg/tmi/config"
	"github.com/tmipkg/tmi/recorder"
	"github.com/tmipkg/tmi/wait"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "tmibot.yaml", "Configuration file or URL")
	debug := flag.Bool("debug", false, "Enable debug logging")
	anonymous := flag.Bool("anonymous", false, "Use anonymous read-only login")
	flag.Parse()

	// Load and validate the configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	username, token := cfg.Server.Username, cfg.Server.Token
	if *anonymous || username == "" {
		username, token = tmi.AnonymousCredentials()
		log.Printf("Using anonymous login as %s", username)
	}

	// Log startup configuration
	log.Printf("Starting tmibot with the following configuration:")
	log.Printf("Chat server: %s", cfg.GetServerAddress())
	log.Printf("Username: %s", username)
	log.Printf("Channels: %v", cfg.Client.Channels)
	log.Printf("Debug logging: %v", *debug || cfg.Client.Debug)

	client := tmi.NewClient(tmi.NewTCPTransport())
	client.Debug = *debug || cfg.Client.Debug
	client.SetReceiveBufferSize(cfg.Client.BufferSize)

	// Event logging
	client.OnLogin(func(ev tmi.LoginEvent) error {
		if ev.Success {
			log.Printf("Logged in as %s (%s)", ev.Username, ev.Code)
		} else {
			log.Printf("Login problem (%s): %s", ev.Code, ev.Message)
		}
		return nil
	})
	client.OnMessage(func(ev tmi.MessageEvent) error {
		log.Printf("#%s <%s> %s", ev.Channel.Name(), ev.Username, ev.Text)
		return nil
	})
	client.OnUserSubscribed(func(ev tmi.SubscriptionEvent) error {
		log.Printf("#%s new subscriber: %s", ev.Channel.Name(), ev.Username)
		return nil
	})

	// Optional chat recorder
	if cfg.Recorder.Enabled {
		rec, err := recorder.Open(cfg.Recorder.DSN)
		if err != nil {
			log.Fatalf("Failed to open recorder: %v", err)
		}
		rec.Attach(client)
		log.Printf("Recording chat to %s", cfg.Recorder.DSN)
	}

	// Wait for the chat server to be reachable, then connect and log in
	if err := wait.ForTCP(cfg.GetServerAddress(), wait.DefaultOptions().
		WithStrategy(wait.NewExponentialBackoffStrategy(time.Second, 2, 30*time.Second))); err != nil {
		log.Fatalf("Chat server unreachable: %v", err)
	}
	if err := client.ConnectAndLogin(cfg.Server.Host, cfg.Server.Port, username, token); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	for _, channel := range cfg.Client.Channels {
		if err := client.Join(channel); err != nil {
			log.Printf("Warning: failed to join #%s: %v", channel, err)
		}
	}

	// Optional admin API
	var api *adminapi.API
	if cfg.Admin.Enabled {
		api = adminapi.New(client, cfg)
		go func() {
			if err := api.Start(); err != nil {
				log.Printf("Admin API stopped: %v", err)
			}
		}()
		log.Printf("Admin API listening on %s", cfg.GetAdminListenAddress())
	}

	// Drive the processing loop until the connection drops
	done := make(chan struct{})
	go func() {
		defer close(done)
		for client.Alive() {
			if err := client.ProcessNextLine(); err != nil {
				log.Printf("Processing error: %v", err)
				return
			}
		}
	}()

	// Wait for termination signal or connection loss
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Shutdown signal received, stopping...")
	case <-done:
		log.Println("Connection closed, stopping...")
	}

	if api != nil {
		api.Stop()
	}
	if client.LoggedIn() {
		client.Logout()
	}
	client.Close()
	log.Println("Goodbye!")
}
