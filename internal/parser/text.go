package parser

import (
	"fmt"
	"io"
	"strings"
)

// TextParser handles plain text files. Form feeds separate pages; a file
// without form feeds is a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	return pagesFromTexts(strings.Split(string(data), "\f")), nil
}
