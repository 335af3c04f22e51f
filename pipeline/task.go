// Package pipeline drives one uploaded document from intake to a
// delivered summary: bounded dispatch, download, extraction,
// windowing, the provider call, and the status-message lifecycle.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/St0rmXtr00per/telegram-summary-bot/extract"
)

// MaxFileBytes is the hard ceiling on declared upload size.
const MaxFileBytes = int64(20 * 1024 * 1024)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file too large")
)

// Task is one unit of work. It is immutable once created and discarded
// after the orchestrator finishes, together with its temp file.
type Task struct {
	ID        uuid.UUID
	ChatID    int64
	MessageID int64 // the message carrying the document; replies reference it
	FileID    string
	FileName  string
	FileSize  int64 // declared size in bytes
}

// NewTask mints a task with a fresh id. Temp paths are keyed by this
// id, never by the user-supplied file name, so concurrent uploads of
// identically named files cannot collide.
func NewTask(chatID, messageID int64, fileID, fileName string, fileSize int64) Task {
	return Task{
		ID:        uuid.New(),
		ChatID:    chatID,
		MessageID: messageID,
		FileID:    fileID,
		FileName:  fileName,
		FileSize:  fileSize,
	}
}

// Validate rejects tasks before any status message or temp file
// exists. Failures map to distinct user-facing rejections.
func Validate(t Task) error {
	if !extract.SupportedSuffix(t.FileName) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, t.FileName)
	}
	if t.FileSize > MaxFileBytes {
		return fmt.Errorf("%w: %d bytes", ErrFileTooLarge, t.FileSize)
	}
	return nil
}
