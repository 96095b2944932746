// Package adminapi exposes a running chat client over HTTP: session status,
// joined channels and rosters, message sending, and Prometheus metrics.
package adminapi

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmipkg/tmi"
	"github.com/tmipkg/tmi/config"
)

// API is the admin HTTP surface for a client.
type API struct {
	client *tmi.Client
	config *config.Config
	echo   *echo.Echo
}

// New creates the admin API around a client.
func New(client *tmi.Client, cfg *config.Config) *API {
	api := &API{
		client: client,
		config: cfg,
		echo:   echo.New(),
	}
	api.echo.HideBanner = true

	api.echo.POST("/api/send", api.handleSend)
	api.echo.POST("/api/join", api.handleJoin)
	api.echo.POST("/api/part", api.handlePart)
	api.echo.GET("/api/channels", api.handleChannels)
	api.echo.GET("/api/status", api.handleStatus)
	// The scrape endpoint carries no session data and stays tokenless.
	api.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		tmi.MetricsRegistry,
		promhttp.HandlerOpts{EnableOpenMetrics: true},
	)))

	return api
}

// Start starts the HTTP server on the configured address.
func (a *API) Start() error {
	return a.echo.Start(a.config.GetAdminListenAddress())
}

// Stop stops the HTTP server.
func (a *API) Stop() error {
	log.Println("Stopping admin API")
	return a.echo.Close()
}

// Handler returns the underlying HTTP handler, used by tests.
func (a *API) Handler() http.Handler {
	return a.echo
}

// Request is the body for the send/join/part endpoints.
type Request struct {
	Channel string `json:"channel"`
	Message string `json:"message,omitempty"`
}

// handleSend sends a channel message through the client.
func (a *API) handleSend(c echo.Context) error {
	if !a.authenticateRequest(c.Request()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Bad request")
	}
	if req.Channel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel is required")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Message is required")
	}

	if err := a.client.SendMessage(req.Channel, req.Message); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Channel not joined")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent",
	})
}

// handleJoin joins a channel.
func (a *API) handleJoin(c echo.Context) error {
	if !a.authenticateRequest(c.Request()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Bad request")
	}
	if req.Channel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel is required")
	}

	if err := a.client.Join(req.Channel); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Join failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// handlePart leaves a channel.
func (a *API) handlePart(c echo.Context) error {
	if !a.authenticateRequest(c.Request()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Bad request")
	}
	if req.Channel == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Channel is required")
	}

	if err := a.client.Leave(req.Channel); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Part failed")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// handleChannels lists the registered channels and their rosters.
func (a *API) handleChannels(c echo.Context) error {
	if !a.authenticateRequest(c.Request()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	channels := make(map[string][]string)
	for _, name := range a.client.ChannelNames() {
		if ch := a.client.GetChannelByName(name); ch != nil {
			channels[name] = ch.Users()
		}
	}
	return c.JSON(http.StatusOK, channels)
}

// handleStatus reports the session state.
func (a *API) handleStatus(c echo.Context) error {
	if !a.authenticateRequest(c.Request()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"host":      a.client.Host(),
		"port":      a.client.Port(),
		"username":  a.client.Username(),
		"alive":     a.client.Alive(),
		"logged_in": a.client.LoggedIn(),
		"channels":  a.client.ChannelNames(),
	})
}

// authenticateRequest checks the bearer token against the configured list.
func (a *API) authenticateRequest(req *http.Request) bool {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return false
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return false
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	for _, validToken := range a.config.Admin.BearerTokens {
		if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) == 1 {
			return true
		}
	}

	return false
}
