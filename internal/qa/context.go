package qa

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docqa/internal/store"
)

// BuildContext concatenates chunk texts, each under a source/page header,
// truncated to the maxChars budget. Chunks that would push past the budget
// are dropped whole.
func BuildContext(chunks []store.Chunk, maxChars int) string {
	var parts []string
	size := 0
	for _, ch := range chunks {
		block := fmt.Sprintf("[%s | p.%d]\n%s\n", ch.Source, ch.Page, strings.TrimSpace(ch.Text))
		if maxChars > 0 && size+len(block) > maxChars {
			break
		}
		parts = append(parts, block)
		size += len(block)
	}
	return strings.Join(parts, "\n")
}
