package processing

import (
	"regexp"
	"strings"
)

const (
	ChunkSize    = 1000
	ChunkOverlap = 200
)

var paragraphBreak = regexp.MustCompile(`\n{2,}`)

// ChunkText splits into paragraph chunks and limits size.
func ChunkText(text string) []string {
	return ChunkTextSize(text, ChunkSize, ChunkOverlap)
}

// ChunkTextSize is ChunkText with explicit limits, counted in runes.
// overlap must be smaller than max.
func ChunkTextSize(text string, max, overlap int) []string {
	if overlap >= max {
		overlap = 0
	}
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, splitLong(p, max, overlap)...)
	}
	return out
}

// splitLong cuts s into windows of max runes advancing by max-overlap, so
// multi-byte characters are never split.
func splitLong(s string, max, overlap int) []string {
	runes := []rune(s)
	if len(runes) <= max {
		return []string{s}
	}
	var res []string
	for i := 0; i < len(runes); i += max - overlap {
		end := min(i+max, len(runes))
		res = append(res, strings.TrimSpace(string(runes[i:end])))
		if end == len(runes) {
			break
		}
	}
	return res
}
