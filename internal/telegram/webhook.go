package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-telegram/bot"

	"github.com/edgard/wardenbot/internal/config"
)

// WebhookServer serves the platform's HTTP callback when push delivery is
// configured. It mounts the bot library's webhook handler on a chi router.
type WebhookServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewWebhookServer builds the HTTP server for webhook update delivery.
func NewWebhookServer(cfg *config.WebhookConfig, b *bot.Bot, logger *slog.Logger) *WebhookServer {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "webhook_server")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post(cfg.Path, b.WebhookHandler())

	return &WebhookServer{
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Run serves webhook requests until ctx is cancelled, then shuts down
// gracefully.
func (s *WebhookServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Webhook HTTP server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("webhook server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown: %w", err)
		}
		s.logger.Info("Webhook HTTP server stopped gracefully.")
		return nil
	}
}

// RegisterWebhook tells the platform where to deliver updates.
func RegisterWebhook(ctx context.Context, b *bot.Bot, cfg *config.WebhookConfig, logger *slog.Logger) error {
	url := cfg.PublicURL + cfg.Path
	ok, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:         url,
		SecretToken: cfg.SecretToken,
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !ok {
		return fmt.Errorf("platform rejected webhook registration for %s", url)
	}
	logger.Info("Webhook registered", "url", url)
	return nil
}
