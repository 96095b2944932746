/*
Package tmi implements a client-side engine for the line-oriented,
IRC-derived chat protocol used by Twitch-style streaming chat.

# Features

## Connection and Login

- Transport lifecycle over a pluggable byte stream (TCP by default)
- PASS/NICK/USER login handshake, confirmed by the server's 004/375 numerics
- Anonymous read-only login credentials (justinfan convention)
- Single synchronous Reconnect using the stored endpoint

## Channels and Messaging

- JOIN/PART with an optimistic channel registry and per-channel rosters
- 353 NAMES replies merged into rosters with union semantics
- PRIVMSG sending gated on channel membership
- Automatic PONG replies to server PING

## Events

Structured events fan out to subscribers in registration order: connect,
login result, join, ping, message, subscription, leave, logout. Event
delivery is built on the hooks package; subscribers may attach priorities.

## Processing model

The engine is synchronous and single-threaded: the caller drives a polling
loop around ProcessNextLine, which performs one blocking read and fully
dispatches every line in the chunk before returning. Commands issued from
other goroutines must be serialized by the caller; the embedded lock only
keeps the registry and session flags internally consistent.

# Usage

	client := tmi.NewClient(tmi.NewTCPTransport())
	client.OnMessage(func(ev tmi.MessageEvent) error {
		log.Printf("#%s <%s> %s", ev.Channel.Name(), ev.Username, ev.Text)
		return nil
	})

	if err := client.ConnectAndLogin("irc.chat.twitch.tv", 6667, nick, token); err != nil {
		log.Fatal(err)
	}
	client.Join("somechannel")

	for client.Alive() {
		if err := client.ProcessNextLine(); err != nil {
			log.Fatal(err)
		}
	}
*/
package tmi
