package extract

import "strings"

// DefaultWindowChars is the default excerpt character budget.
const DefaultWindowChars = 3000

const windowMarker = "..."

// Window flattens the document into a single space-joined string and
// bounds it to maxChars characters. A text over budget keeps its head
// (three quarters of the budget) and its tail (the final quarter,
// taken from the original string), joined by "...", so the narrative
// opening and ending survive while the middle is dropped.
//
// With maxChars=3000 the result is 2250 head + 750 tail characters
// plus the three marker characters.
func Window(doc Document, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultWindowChars
	}
	joined := strings.Join(doc.Lines, " ")
	runes := []rune(joined)
	if len(runes) <= maxChars {
		return joined
	}
	quarter := maxChars / 4
	head := maxChars - quarter
	return string(runes[:head]) + windowMarker + string(runes[len(runes)-quarter:])
}
