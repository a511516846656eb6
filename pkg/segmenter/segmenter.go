package segmenter

import (
	"strings"
	"unicode"
)

// lookbackWindow is how far back from the hard cutoff we search for a
// sentence boundary before falling back to plain whitespace.
const lookbackWindow = 100

// Segment splits text into ordered, non-empty segments of at most
// maxSegmentSize runes each, preferring semantic break points.
//
// Cut selection, per slice:
//  1. last sentence terminator followed by whitespace inside the lookback
//     window before the hard cutoff
//  2. nearest whitespace scanning backward from the hard cutoff
//  3. the hard cutoff itself
//
// Every emitted segment is trimmed; segments that trim to empty are dropped.
// Concatenating the result reconstructs the input modulo whitespace at the
// cut points.
func Segment(text string, maxSegmentSize int) []string {
	if maxSegmentSize <= 0 {
		maxSegmentSize = 1
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return []string{}
	}

	runes := []rune(text)
	total := len(runes)

	if total <= maxSegmentSize {
		return []string{trimmed}
	}

	var segments []string
	offset := 0

	for offset < total {
		remaining := total - offset
		if remaining <= maxSegmentSize {
			if s := strings.TrimSpace(string(runes[offset:])); s != "" {
				segments = append(segments, s)
			}
			break
		}

		hardCutoff := offset + maxSegmentSize
		cut := findCut(runes, offset, hardCutoff)

		if s := strings.TrimSpace(string(runes[offset:cut])); s != "" {
			segments = append(segments, s)
		}
		offset = cut
	}

	if segments == nil {
		return []string{}
	}
	return segments
}

// findCut picks the cut position in (offset, hardCutoff] for the current slice.
func findCut(runes []rune, offset, hardCutoff int) int {
	windowStart := hardCutoff - lookbackWindow
	if windowStart < offset {
		windowStart = offset
	}

	// Prefer the last "sentence terminator + whitespace" pair in the window.
	// The cut lands after the whitespace so the next segment starts clean.
	for i := hardCutoff - 1; i > windowStart; i-- {
		if isSentenceTerminator(runes[i-1]) && unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// Fall back to the nearest whitespace before the hard cutoff.
	for i := hardCutoff - 1; i > offset; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}

	// No break point at all (one unbroken token): cut exactly at the limit.
	return hardCutoff
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}
