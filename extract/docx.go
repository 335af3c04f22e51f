package extract

import (
	"os"
	"strings"

	"code.sajari.com/docconv"
)

// extractDocx reads the document's paragraph sequence and keeps only
// paragraphs whose trimmed text is non-empty, in document order.
func extractDocx(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, p := range strings.Split(body, "\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines, nil
}
