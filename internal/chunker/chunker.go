// Package chunker splits parsed text into bounded segments for
// retrieval. Splitting is token-aware: cuts land on whitespace
// boundaries, not inside words, and every chunk is an exact substring
// of the input so the concatenation of all chunks reproduces it.
package chunker

import (
	"unicode/utf8"

	"github.com/swiftbeard/ragserver/internal/parser"
)

const DefaultMaxChunkChars = 1000

type Chunker struct {
	maxChars int
}

func New(maxChars int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}
	return &Chunker{maxChars: maxChars}
}

// Split breaks text into chunks of at most maxChars bytes. Empty input
// produces no chunks; input within the budget produces exactly one.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if len(text) <= c.maxChars {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= c.maxChars {
			chunks = append(chunks, text[start:])
			break
		}

		end := start + c.maxChars
		cut := end
		for cut > start && !isTokenBoundary(text, cut) {
			cut--
		}
		if cut == start {
			// A single token longer than the budget: hard cut, but
			// never in the middle of a rune.
			cut = end
			for cut > start && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == start {
				cut = end
			}
		}

		chunks = append(chunks, text[start:cut])
		start = cut
	}

	return chunks
}

// SplitSegments chunks each parsed segment in turn, preserving the
// original segment order.
func (c *Chunker) SplitSegments(segments []parser.Segment) []string {
	var chunks []string
	for _, seg := range segments {
		chunks = append(chunks, c.Split(seg.Text)...)
	}
	return chunks
}

// isTokenBoundary reports whether cutting before index i separates two
// tokens rather than splitting one. ASCII whitespace bytes never occur
// inside multibyte runes, so a byte check is safe.
func isTokenBoundary(text string, i int) bool {
	return isSpace(text[i]) || isSpace(text[i-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
