package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/St0rmXtr00per/telegram-summary-bot/internal/logutil"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the bot with long polling",
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

			pollTimeout := flagOrViperDuration(cmd, "poll-timeout", "telegram.poll_timeout")
			if pollTimeout <= 0 {
				pollTimeout = 30 * time.Second
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			me, err := a.api.GetMe(ctx)
			if err != nil {
				return err
			}
			logger.Info("bot_start",
				"bot_username", me.Username,
				"bot_id", me.ID,
				"poll_timeout", pollTimeout.String(),
			)

			var offset int64
			for {
				updates, nextOffset, err := a.api.GetUpdates(ctx, offset, pollTimeout)
				if err != nil {
					if ctx.Err() != nil {
						logger.Info("bot_stop")
						return nil
					}
					logger.Warn("telegram_get_updates_error", "error", err.Error())
					time.Sleep(1 * time.Second)
					continue
				}
				offset = nextOffset

				for _, u := range updates {
					a.handleUpdate(ctx, u)
				}
			}
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().String("hf-api-token", "", "Hugging Face Inference API token.")
	cmd.Flags().String("hf-model", "", "Summarization model id (defaults to a dialogue summarization model).")
	cmd.Flags().Duration("poll-timeout", 30*time.Second, "Long polling timeout for getUpdates.")
	cmd.Flags().Int("workers", 3, "Max number of files processed concurrently.")
	cmd.Flags().String("file-cache-dir", "/var/cache/recapbot", "Temporary directory for downloaded files.")

	return cmd
}
