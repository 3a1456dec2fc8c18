package extract

import (
	"strings"
	"unicode"
)

// ChunkConfig controls how extracted text blocks are packed into chunks.
type ChunkConfig struct {
	MaxChars  int
	MinChars  int
	MaxChunks int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:  1200,
		MinChars:  400,
		MaxChunks: 200,
	}
}

// chunkBlocks packs semantic blocks (pages or paragraphs) into chunks of at
// most MaxChars runes. Adjacent blocks are merged while they fit; a block
// longer than MaxChars is split at whitespace near the limit. Block order is
// preserved.
func chunkBlocks(blocks []string, cfg ChunkConfig) []string {
	if cfg.MaxChars <= 0 {
		cfg = DefaultChunkConfig()
	}

	chunks := make([]string, 0, len(blocks))
	var pending strings.Builder
	pendingLen := 0

	flush := func() {
		if pendingLen == 0 {
			return
		}
		chunks = append(chunks, pending.String())
		pending.Reset()
		pendingLen = 0
	}

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		runes := []rune(block)
		if len(runes) > cfg.MaxChars {
			flush()
			chunks = append(chunks, splitLongBlock(runes, cfg)...)
			continue
		}

		// +2 accounts for the paragraph separator.
		if pendingLen > 0 && pendingLen+len(runes)+2 > cfg.MaxChars {
			flush()
		}
		if pendingLen > 0 {
			pending.WriteString("\n\n")
			pendingLen += 2
		}
		pending.WriteString(block)
		pendingLen += len(runes)
	}
	flush()

	if cfg.MaxChunks > 0 && len(chunks) > cfg.MaxChunks {
		chunks = chunks[:cfg.MaxChunks]
	}

	return chunks
}

// splitLongBlock cuts an oversized block into MaxChars windows, preferring a
// whitespace boundary no earlier than MinChars into the window.
func splitLongBlock(runes []rune, cfg ChunkConfig) []string {
	chunks := make([]string, 0, len(runes)/cfg.MaxChars+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.MaxChars
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinChars
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		if end <= start {
			break
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		start = end
	}
	return chunks
}
