package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/samuel-rocha-gestao-trafego/estoque-bot/internal/telegram"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot behind a Telegram webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			addr := strings.TrimSpace(viper.GetString("serve.addr"))
			if addr == "" {
				addr = ":8080"
			}

			// The listener comes up before the heavy initialization so the
			// platform's health checks get a 503 instead of a refused
			// connection while Sheets and Calendar are being opened.
			handler := newWebhookHandler(slog.Default())
			srv := &http.Server{
				Addr:              addr,
				Handler:           handler.mux(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			a, err := buildApp(ctx)
			if err != nil {
				_ = srv.Close()
				return err
			}
			handler.logger = a.logger
			handler.app.Store(a)
			a.logger.Info("serve_start", "addr", addr)

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().String("serve-addr", ":8080", "Webhook listen address.")
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("serve-addr"))

	return cmd
}

type webhookHandler struct {
	logger *slog.Logger
	app    atomic.Pointer[app]
}

func newWebhookHandler(logger *slog.Logger) *webhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &webhookHandler{logger: logger}
}

func (h *webhookHandler) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", h.handleWebhook)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

func (h *webhookHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.app.Load() == nil {
		http.Error(w, "initializing", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleWebhook acknowledges every delivered update with 200 once the app is
// up; anything else makes Telegram redeliver the same update in a loop.
func (h *webhookHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	a := h.app.Load()
	if a == nil {
		http.Error(w, "initializing", http.StatusServiceUnavailable)
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("webhook_bad_payload", "error", err.Error())
		w.WriteHeader(http.StatusOK)
		return
	}

	msg := update.IncomingMessage()
	if msg == nil || msg.Chat == nil || msg.BodyText() == "" || (msg.From != nil && msg.From.IsBot) {
		w.WriteHeader(http.StatusOK)
		return
	}

	a.handleIncoming(r.Context(), msg.Chat.ID, msg.MessageID, incomingFromMessage(msg))
	w.WriteHeader(http.StatusOK)
}
