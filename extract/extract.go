// Package extract turns uploaded source files into ordered dialogue
// lines and reduces them to a bounded excerpt for summarization.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Document is the extracted dialogue of one source file. Lines keep
// source order and are never mutated after extraction.
type Document struct {
	SourceFileName string
	Lines          []string
}

func (d Document) Empty() bool {
	return len(d.Lines) == 0
}

// SupportedSuffix reports whether fileName carries a suffix this
// package can extract. The check is case-insensitive.
func SupportedSuffix(fileName string) bool {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx", ".srt":
		return true
	default:
		return false
	}
}

// Extract reads the file at path and returns its dialogue lines. The
// extractor is chosen by the declared file name's suffix, not by path,
// because the on-disk name is an opaque task-scoped identifier.
func Extract(path, fileName string) (Document, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".docx":
		lines, err := extractDocx(path)
		if err != nil {
			return Document{}, fmt.Errorf("extract docx: %w", err)
		}
		return Document{SourceFileName: fileName, Lines: lines}, nil
	case ".srt":
		lines, err := extractSRT(path)
		if err != nil {
			return Document{}, fmt.Errorf("extract srt: %w", err)
		}
		return Document{SourceFileName: fileName, Lines: lines}, nil
	default:
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}
