package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/St0rmXtr00per/telegram-summary-bot/internal/cachedir"
	"github.com/St0rmXtr00per/telegram-summary-bot/pipeline"
	"github.com/St0rmXtr00per/telegram-summary-bot/summarize"
	"github.com/St0rmXtr00per/telegram-summary-bot/telegram"
)

const (
	helpText = "Send me a .docx script or a .srt subtitle file (up to 20 MB) and I will reply with a short spoiler-wrapped summary.\n" +
		"Commands: /start, /help"
	hintText = "Attach a .docx or .srt file to get a summary. Send /help for details."
	busyText = "I am busy with other files right now. Please resend this one in a minute."
)

// app wires the collaborators once at startup and passes them into
// each task explicitly; there are no process-wide singletons.
type app struct {
	logger     *slog.Logger
	api        *telegram.Client
	dispatcher *pipeline.Dispatcher
}

func newApp(cmd *cobra.Command, logger *slog.Logger) (*app, error) {
	botToken := strings.TrimSpace(flagOrViperString(cmd, "telegram-bot-token", "telegram.bot_token"))
	if botToken == "" {
		return nil, fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or RECAPBOT_TELEGRAM_BOT_TOKEN)")
	}
	hfToken := strings.TrimSpace(flagOrViperString(cmd, "hf-api-token", "hf.api_token"))
	if hfToken == "" {
		return nil, fmt.Errorf("missing hf.api_token (set via --hf-api-token or RECAPBOT_HF_API_TOKEN)")
	}

	cacheDir := strings.TrimSpace(flagOrViperString(cmd, "file-cache-dir", "file_cache_dir"))
	if cacheDir == "" {
		cacheDir = "/var/cache/recapbot"
	}
	if err := cachedir.EnsureSecure(cacheDir); err != nil {
		return nil, fmt.Errorf("file cache dir: %w", err)
	}
	maxAge := viper.GetDuration("file_cache.max_age")
	maxFiles := viper.GetInt("file_cache.max_files")
	maxTotalBytes := viper.GetInt64("file_cache.max_total_bytes")
	if err := cachedir.Cleanup(cacheDir, maxAge, maxFiles, maxTotalBytes); err != nil {
		logger.Warn("file_cache_cleanup_error", "error", err.Error())
	}

	api := telegram.NewClient(nil, "", botToken)

	summarizer := summarize.NewClient(
		viper.GetString("hf.endpoint"),
		flagOrViperString(cmd, "hf-model", "hf.model"),
		hfToken,
	)

	orch := pipeline.NewOrchestrator(
		logger,
		telegramMessenger{api: api},
		summarizer,
		cacheDir,
		viper.GetInt("pipeline.window_chars"),
	)

	dispatcher := pipeline.NewDispatcher(
		logger,
		flagOrViperInt(cmd, "workers", "pipeline.workers"),
		viper.GetInt("pipeline.queue_size"),
		orch.Run,
	)

	return &app{logger: logger, api: api, dispatcher: dispatcher}, nil
}

func (a *app) close() {
	a.dispatcher.Close()
}

// handleUpdate is the accept path shared by the poll loop and the
// webhook handler. Commands and hints are answered synchronously;
// document messages become tasks and never block intake.
func (a *app) handleUpdate(ctx context.Context, u telegram.Update) {
	msg := u.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(telegram.MessageTextOrCaption(msg))

	if msg.Document == nil {
		switch normalizeSlashCommand(text) {
		case "/start", "/help":
			a.send(ctx, chatID, helpText)
		default:
			if text != "" && strings.EqualFold(msg.Chat.Type, "private") {
				a.send(ctx, chatID, hintText)
			}
		}
		return
	}

	task := pipeline.NewTask(chatID, msg.MessageID, msg.Document.FileID, msg.Document.FileName, msg.Document.FileSize)
	if !a.dispatcher.Submit(task) {
		a.send(ctx, chatID, busyText)
		return
	}
	a.sendTyping(ctx, chatID)
}

func (a *app) send(ctx context.Context, chatID int64, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := a.api.SendMessage(sendCtx, chatID, text, telegram.SendOptions{DisableWebPagePreview: true}); err != nil {
		a.logger.Warn("telegram_send_error", "chat_id", chatID, "error", err.Error())
	}
}

// sendTyping shows the typing indicator while the accepted task waits
// for a worker; failures are cosmetic.
func (a *app) sendTyping(ctx context.Context, chatID int64) {
	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.api.SendChatAction(sendCtx, chatID, "typing"); err != nil {
		a.logger.Warn("telegram_chat_action_error", "chat_id", chatID, "error", err.Error())
	}
}

func normalizeSlashCommand(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || !strings.HasPrefix(text, "/") {
		return ""
	}
	if i := strings.IndexAny(text, " \n\t"); i >= 0 {
		text = text[:i]
	}
	// Allow "/cmd@BotName" variants by stripping "@...".
	if at := strings.IndexByte(text, '@'); at >= 0 {
		text = text[:at]
	}
	return strings.ToLower(text)
}

// telegramMessenger adapts the Telegram client to the pipeline's
// messaging contract.
type telegramMessenger struct {
	api *telegram.Client
}

func (m telegramMessenger) SendMessage(ctx context.Context, chatID int64, text string, opts pipeline.SendOptions) (int64, error) {
	return m.api.SendMessage(ctx, chatID, text, telegram.SendOptions{
		ParseMode:             opts.ParseMode,
		ReplyToMessageID:      opts.ReplyToMessageID,
		DisableWebPagePreview: opts.DisableWebPagePreview,
	})
}

func (m telegramMessenger) EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts pipeline.SendOptions) error {
	return m.api.EditMessageText(ctx, chatID, messageID, text, telegram.SendOptions{ParseMode: opts.ParseMode})
}

func (m telegramMessenger) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	return m.api.DeleteMessage(ctx, chatID, messageID)
}

func (m telegramMessenger) DownloadFile(ctx context.Context, fileID, dstPath string, maxBytes int64) error {
	return m.api.DownloadFile(ctx, fileID, dstPath, maxBytes)
}
