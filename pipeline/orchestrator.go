package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/St0rmXtr00per/telegram-summary-bot/extract"
	"github.com/St0rmXtr00per/telegram-summary-bot/summarize"
)

// MinExcerptChars is the floor below which an excerpt is considered
// insufficient; such tasks terminate before any provider call.
const MinExcerptChars = 100

// Messenger is the outbound messaging collaborator: the Telegram
// client in production, a stub in tests.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts SendOptions) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	DownloadFile(ctx context.Context, fileID, dstPath string, maxBytes int64) error
}

// SendOptions mirrors the messaging collaborator's optional fields so
// the pipeline does not import the transport package.
type SendOptions struct {
	ParseMode             string
	ReplyToMessageID      int64
	DisableWebPagePreview bool
}

// Summarizer is the external summarization provider.
type Summarizer interface {
	Summarize(ctx context.Context, excerpt, displayName string) summarize.Outcome
}

// User-facing texts. Exactly one of these (or a deleted status plus a
// success reply) is the terminal record of every task.
const (
	textRejectedFormat    = "I can only summarize .docx and .srt files."
	textRejectedTooLarge  = "This file is too large to process (the limit is 20 MB)."
	textStatusAnalyzing   = "⏳ Analyzing the episode..."
	textStatusGenerating  = "✍️ Generating the summary..."
	textDownloadFailed    = "Could not download the file from Telegram. Please send it again."
	textNoDialogue        = "No dialogue content found in this file."
	textInsufficient      = "There is not enough dialogue in this file to build a summary."
	textModelLoading      = "The summarization model is still loading. Please resend the file in 1-2 minutes."
	textRateLimited       = "The summarization service is rate limited right now. Please try again later."
	textProviderTimeout   = "The summarization service took too long to answer. Please resend the file to retry."
	textUnexpectedFailure = "Unexpected error while processing this file. Please try again."
)

type Orchestrator struct {
	logger      *slog.Logger
	msg         Messenger
	summarizer  Summarizer
	tmpDir      string
	windowChars int
}

func NewOrchestrator(logger *slog.Logger, msg Messenger, summarizer Summarizer, tmpDir string, windowChars int) *Orchestrator {
	if windowChars <= 0 {
		windowChars = extract.DefaultWindowChars
	}
	return &Orchestrator{
		logger:      logger,
		msg:         msg,
		summarizer:  summarizer,
		tmpDir:      tmpDir,
		windowChars: windowChars,
	}
}

// tempPath keys the on-disk artifact by task id, not by the uploaded
// file name, so same-named concurrent uploads never collide.
func (o *Orchestrator) tempPath(t Task) string {
	return filepath.Join(o.tmpDir, t.ID.String()+strings.ToLower(filepath.Ext(t.FileName)))
}

// Run drives one task end to end. It never returns an error and never
// lets a panic escape: the dispatcher must survive any single task.
func (o *Orchestrator) Run(ctx context.Context, t Task) {
	logger := o.logger.With("task_id", t.ID.String(), "chat_id", t.ChatID, "file_name", t.FileName)

	var statusID int64
	tmpPath := o.tempPath(t)

	// Temp-file release is a contract, not best effort: it runs on
	// success, on every failure exit, and after a recovered panic.
	defer func() {
		if r := recover(); r != nil {
			logger.Error("task_panic", "panic", fmt.Sprint(r))
			o.fail(ctx, t, statusID, textUnexpectedFailure)
		}
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("temp_file_remove_error", "path", tmpPath, "error", err.Error())
		}
	}()

	// Accepted: size and suffix gates, before any side effect.
	if err := Validate(t); err != nil {
		text := textRejectedFormat
		if errors.Is(err, ErrFileTooLarge) {
			text = textRejectedTooLarge
		}
		logger.Info("task_rejected", "reason", err.Error())
		o.reply(ctx, t, text)
		return
	}

	// StatusCreated: the progress indicator is an aid, not a
	// precondition; a failed send is logged and processing continues.
	id, err := o.msg.SendMessage(ctx, t.ChatID, textStatusAnalyzing, SendOptions{})
	if err != nil {
		logger.Warn("status_create_error", "error", err.Error())
	} else {
		statusID = id
	}

	// Downloaded.
	if err := o.msg.DownloadFile(ctx, t.FileID, tmpPath, MaxFileBytes); err != nil {
		logger.Warn("download_error", "error", err.Error())
		o.fail(ctx, t, statusID, textDownloadFailed)
		return
	}

	// Extracted.
	doc, err := extract.Extract(tmpPath, t.FileName)
	if err != nil {
		logger.Warn("extract_error", "error", err.Error())
		o.fail(ctx, t, statusID, textNoDialogue)
		return
	}
	if doc.Empty() {
		logger.Info("extract_empty")
		o.fail(ctx, t, statusID, textNoDialogue)
		return
	}

	// Windowed.
	excerpt := extract.Window(doc, o.windowChars)
	if n := len([]rune(excerpt)); n < MinExcerptChars {
		logger.Info("excerpt_insufficient", "excerpt_len", n)
		o.fail(ctx, t, statusID, textInsufficient)
		return
	}

	// Summarized.
	if statusID != 0 {
		if err := o.msg.EditMessageText(ctx, t.ChatID, statusID, textStatusGenerating, SendOptions{}); err != nil {
			logger.Warn("status_edit_error", "error", err.Error())
		}
	}
	outcome := o.summarizer.Summarize(ctx, excerpt, DisplayTitle(t.FileName))

	// Delivered.
	switch outcome.Kind {
	case summarize.KindSuccess:
		if statusID != 0 {
			if err := o.msg.DeleteMessage(ctx, t.ChatID, statusID); err != nil {
				logger.Warn("status_delete_error", "error", err.Error())
			}
		}
		body := FormatReply(outcome.Text, t.FileName)
		if _, err := o.msg.SendMessage(ctx, t.ChatID, body, SendOptions{
			ParseMode:        "HTML",
			ReplyToMessageID: t.MessageID,
		}); err != nil {
			logger.Warn("reply_send_error", "error", err.Error())
			return
		}
		logger.Info("task_done")
	case summarize.KindRetryable:
		logger.Info("provider_retryable", "reason", outcome.Reason)
		o.fail(ctx, t, statusID, retryableText(outcome.Reason))
	default:
		logger.Warn("provider_fatal", "reason", outcome.Reason)
		o.fail(ctx, t, statusID, "Summarization failed: "+outcome.Reason+". Please try a different file.")
	}
}

func retryableText(reason string) string {
	switch reason {
	case "model loading":
		return textModelLoading
	case "rate limited":
		return textRateLimited
	case "timeout":
		return textProviderTimeout
	default:
		return textProviderTimeout
	}
}

// fail turns the status message into the terminal error record, or
// falls back to a plain reply when no status message exists.
func (o *Orchestrator) fail(ctx context.Context, t Task, statusID int64, text string) {
	if statusID != 0 {
		if err := o.msg.EditMessageText(ctx, t.ChatID, statusID, text, SendOptions{}); err == nil {
			return
		}
		o.logger.Warn("status_edit_error", "chat_id", t.ChatID, "status_id", statusID)
	}
	o.reply(ctx, t, text)
}

func (o *Orchestrator) reply(ctx context.Context, t Task, text string) {
	if _, err := o.msg.SendMessage(ctx, t.ChatID, text, SendOptions{ReplyToMessageID: t.MessageID}); err != nil {
		o.logger.Warn("reply_send_error", "chat_id", t.ChatID, "error", err.Error())
	}
}
