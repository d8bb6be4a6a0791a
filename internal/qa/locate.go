package qa

import "github.com/dgallion1/docqa/internal/store"

// Locate maps an accepted answer back to the chunk that supports it:
// the first retrieved chunk whose normalized text contains the normalized
// answer, else the first (highest-ranked) retrieved chunk. The ordering
// preference is a deliberate tie-break and must stay first-match-wins.
func Locate(answer string, chunks []store.Chunk) (store.Chunk, bool) {
	if len(chunks) == 0 {
		return store.Chunk{}, false
	}
	for _, ch := range chunks {
		if containsNormalized(ch.Text, answer) {
			return ch, true
		}
	}
	return chunks[0], true
}
