package discord

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HealthStatus represents the bot's health status
type HealthStatus struct {
	Status           string     `json:"status"`
	Uptime           string     `json:"uptime"`
	Connected        bool       `json:"connected"`
	CommandsReceived int64      `json:"commands_received"`
	LastCommandTime  *time.Time `json:"last_command_time,omitempty"`
	PendingBurns     int        `json:"pending_burns"`
	APIReachable     bool       `json:"api_reachable"`
}

// Health snapshots the bot's state and probes the API
func (b *Bot) Health(ctx context.Context) HealthStatus {
	connected := b.Session != nil && b.Session.DataReady
	apiReachable := b.Client != nil && b.Client.Healthy(ctx)

	status := "healthy"
	if !connected || !apiReachable {
		status = "degraded"
	}

	h := HealthStatus{
		Status:           status,
		Uptime:           time.Since(b.startedAt).Round(time.Second).String(),
		Connected:        connected,
		CommandsReceived: b.commands.Load(),
		PendingBurns:     b.Burns.Len(),
		APIReachable:     apiReachable,
	}
	if last := b.lastCommand.Load(); last > 0 {
		t := time.Unix(last, 0).UTC()
		h.LastCommandTime = &t
	}
	return h
}

// HTTPServer exposes the bot's health probe
type HTTPServer struct {
	server *http.Server
	bot    *Bot
}

// NewHTTPServer creates the internal HTTP server
func NewHTTPServer(port string, bot *Bot) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		bot: bot,
	}
	mux.HandleFunc("GET /healthz", srv.HandleHealth)
	return srv
}

// Start serves in the background
func (s *HTTPServer) Start() {
	go func() {
		slog.Info(LogMsgInternalServerStart, "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error(LogMsgInternalServerError, "error", err)
		}
	}()
}

// Stop shuts the server down
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// HandleHealth returns 200 when the gateway and the API are both up
func (s *HTTPServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := s.bot.Health(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(health)
}
