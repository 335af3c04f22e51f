package pipeline

import (
	"errors"
	"testing"
)

func TestValidateAcceptsSupportedFiles(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"episode.srt", "Episode.SRT", "script.docx", "Script.DOCX"} {
		task := NewTask(1, 2, "file-id", name, 1024)
		if err := Validate(task); err != nil {
			t.Fatalf("Validate(%q) error = %v", name, err)
		}
	}
}

func TestValidateRejectsUnsupportedSuffix(t *testing.T) {
	t.Parallel()

	task := NewTask(1, 2, "file-id", "notes.txt", 1024)
	err := Validate(task)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error mismatch: got %v want ErrUnsupportedFormat", err)
	}
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	t.Parallel()

	task := NewTask(1, 2, "file-id", "episode.srt", MaxFileBytes+1)
	err := Validate(task)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("error mismatch: got %v want ErrFileTooLarge", err)
	}

	atLimit := NewTask(1, 2, "file-id", "episode.srt", MaxFileBytes)
	if err := Validate(atLimit); err != nil {
		t.Fatalf("Validate() at limit error = %v", err)
	}
}

func TestNewTaskMintsUniqueIDs(t *testing.T) {
	t.Parallel()

	// Two concurrent uploads of the same file name must never share a
	// temp path, so ids must differ even for identical inputs.
	a := NewTask(1, 2, "file-id", "episode.srt", 1024)
	b := NewTask(1, 2, "file-id", "episode.srt", 1024)
	if a.ID == b.ID {
		t.Fatalf("task id collision: %s", a.ID)
	}
}
