package pipeline

import (
	"html"
	"path/filepath"
	"strings"
)

const attributionNote = "Generated from the uploaded file. Open the spoiler to read."

// DisplayTitle derives the user-facing title from the uploaded file
// name by stripping the known extensions.
func DisplayTitle(fileName string) string {
	name := strings.TrimSpace(fileName)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".docx", ".srt":
		name = name[:len(name)-len(filepath.Ext(name))]
	}
	if name == "" {
		return "Summary"
	}
	return name
}

// FormatReply renders the final message body: a bold title, the
// summary wrapped in a spoiler so casual readers are not shown content
// unless they opt in, and a trailing attribution note. The body is
// Telegram HTML; user-derived text is escaped.
func FormatReply(summaryText, fileName string) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(DisplayTitle(fileName)))
	b.WriteString("</b>\n\n")
	b.WriteString("<tg-spoiler>")
	b.WriteString(html.EscapeString(strings.TrimSpace(summaryText)))
	b.WriteString("</tg-spoiler>\n\n")
	b.WriteString("<i>")
	b.WriteString(attributionNote)
	b.WriteString("</i>")
	return b.String()
}
