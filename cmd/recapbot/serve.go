package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/St0rmXtr00per/telegram-summary-bot/internal/logutil"
	"github.com/St0rmXtr00per/telegram-summary-bot/telegram"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bot behind a Telegram webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			a, err := newApp(cmd, logger)
			if err != nil {
				return err
			}
			defer a.close()

			bind := strings.TrimSpace(flagOrViperString(cmd, "server-bind", "server.bind"))
			if bind == "" {
				bind = "127.0.0.1"
			}
			port := flagOrViperInt(cmd, "server-port", "server.port")
			if port <= 0 {
				port = 8080
			}
			publicURL := strings.TrimSpace(flagOrViperString(cmd, "server-public-url", "server.public_url"))

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if publicURL != "" {
				hookURL := strings.TrimRight(publicURL, "/") + "/telegram/webhook"
				regCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
				err := a.api.SetWebhook(regCtx, hookURL)
				cancel()
				if err != nil {
					return fmt.Errorf("set webhook: %w", err)
				}
				logger.Info("webhook_registered", "url", hookURL)
			}

			srv := &http.Server{
				Addr:              bind + ":" + strconv.Itoa(port),
				Handler:           newWebhookMux(a),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("serve_start", "addr", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("serve_shutdown_error", "error", err.Error())
			}
			logger.Info("serve_stop")
			return nil
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("hf-api-token", "", "Hugging Face Inference API token.")
	cmd.Flags().String("hf-model", "", "Summarization model id (defaults to a dialogue summarization model).")
	cmd.Flags().String("server-bind", "127.0.0.1", "Bind address for the webhook server.")
	cmd.Flags().Int("server-port", 8080, "Listen port for the webhook server.")
	cmd.Flags().String("server-public-url", "", "Public base URL to register with Telegram (optional).")
	cmd.Flags().Int("workers", 3, "Max number of files processed concurrently.")
	cmd.Flags().String("file-cache-dir", "/var/cache/recapbot", "Temporary directory for downloaded files.")

	return cmd
}

// newWebhookMux routes the health probe and Telegram's webhook posts.
func newWebhookMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/telegram/webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var u telegram.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		a.handleUpdate(r.Context(), u)
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
