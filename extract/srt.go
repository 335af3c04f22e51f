package extract

import (
	"os"
	"strings"
)

// extractSRT keeps speaker-tagged dialogue lines from a SubRip file.
//
// Blocks are separated by blank lines. A block qualifies only if it
// has at least three lines (index, timing, one or more text lines);
// lines from the third onward are candidates, and a candidate is kept
// only when it contains both '[' and ']' (the speaker-tag convention).
// Index and "-->" timing lines never carry brackets, so they fall out
// of the same filter.
func extractSRT(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	content := strings.ReplaceAll(string(raw), "\r\n", "\n")

	var lines []string
	for _, block := range splitBlocks(content) {
		if len(block) < 3 {
			continue
		}
		for _, l := range block[2:] {
			if !strings.Contains(l, "[") || !strings.Contains(l, "]") {
				continue
			}
			if strings.Contains(l, "-->") {
				continue
			}
			lines = append(lines, l)
		}
	}
	return lines, nil
}

// splitBlocks groups consecutive non-blank lines; one or more blank
// lines end a block.
func splitBlocks(content string) [][]string {
	var blocks [][]string
	var cur []string
	for _, l := range strings.Split(content, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}
