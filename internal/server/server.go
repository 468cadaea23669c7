// Package server exposes the bot's HTTP endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielolaszy/supportbot/internal/dateparse"
	"github.com/danielolaszy/supportbot/internal/jira"
	"github.com/danielolaszy/supportbot/internal/logging"
	"github.com/danielolaszy/supportbot/internal/notify"
	"github.com/danielolaszy/supportbot/internal/webhook"
)

const (
	maxBodyBytes    = 1 << 20
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// TicketCreator opens tickets for customer requests.
type TicketCreator interface {
	CreateTicket(ctx context.Context, req jira.TicketRequest) (string, string, error)
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Processor *webhook.Processor
	Directory *notify.Directory

	// Tickets is optional; without it conversations cannot open tickets
	Tickets TicketCreator

	// Dates normalizes dates in ticket requests
	Dates *dateparse.Parser

	// SlackSigningSecret enables request verification on /slack/events
	SlackSigningSecret string

	// Now is used for health timestamps; nil means time.Now
	Now func() time.Time
}

// Server is the HTTP front of the bot.
type Server struct {
	httpServer *http.Server
}

// New builds a server listening on addr.
func New(addr string, deps Deps) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(deps),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewHandler returns the routed handler with middleware applied.
func NewHandler(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Directory == nil {
		deps.Directory = notify.NewDirectory()
	}
	if deps.Dates == nil {
		deps.Dates = dateparse.New()
	}

	mux := http.NewServeMux()
	mux.Handle("POST /webhook/jira", NewWebhookHandler(deps.Processor))
	mux.Handle("GET /webhook/health", NewHealthHandler(deps.Now))
	mux.Handle("POST /slack/events", NewSlackEventsHandler(deps.SlackSigningSecret, deps.Directory))
	mux.Handle("POST /api/conversations", NewConversationsHandler(deps.Directory, deps.Tickets, deps.Dates))

	return withRequestID(withRecovery(mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
