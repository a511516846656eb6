package segmenter

import (
	"strings"
	"testing"
)

func TestSegmentShortInputs(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{
			name: "empty input",
			text: "",
			max:  100,
			want: []string{},
		},
		{
			name: "whitespace only",
			text: "   \n\t  ",
			max:  100,
			want: []string{},
		},
		{
			name: "fits in one segment",
			text: "Hello world.",
			max:  100,
			want: []string{"Hello world."},
		},
		{
			name: "exactly at the limit",
			text: strings.Repeat("a", 50),
			max:  50,
			want: []string{strings.Repeat("a", 50)},
		},
		{
			name: "surrounding whitespace is trimmed",
			text: "  Hello world.  ",
			max:  100,
			want: []string{"Hello world."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text, tt.max)

			if len(got) != len(tt.want) {
				t.Fatalf("Segment() = %d segments, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSegmentPrefersSentenceBoundary(t *testing.T) {
	// The sentence ends inside the lookback window before the 100-rune
	// cutoff, so the cut must land after it.
	first := strings.Repeat("a", 60) + ". "
	second := strings.Repeat("b", 80) + "."
	got := Segment(first+second, 100)

	if len(got) != 2 {
		t.Fatalf("Segment() = %d segments, want 2", len(got))
	}
	if got[0] != strings.Repeat("a", 60)+"." {
		t.Errorf("first segment = %q, want sentence up to the terminator", got[0])
	}
	if got[1] != second {
		t.Errorf("second segment = %q, want %q", got[1], second)
	}
}

func TestSegmentFallsBackToWhitespace(t *testing.T) {
	// No sentence terminator anywhere: the cut falls back to the nearest
	// whitespace before the limit.
	words := strings.Repeat("word ", 50) // 250 runes
	got := Segment(words, 100)

	if len(got) < 2 {
		t.Fatalf("Segment() = %d segments, want several", len(got))
	}
	for i, s := range got {
		if strings.Contains(s, "wordword") {
			t.Errorf("segment %d cut inside a word: %q", i, s)
		}
	}
}

func TestSegmentHardCutsUnbrokenToken(t *testing.T) {
	token := strings.Repeat("x", 250)
	got := Segment(token, 100)

	if len(got) != 3 {
		t.Fatalf("Segment() = %d segments, want 3", len(got))
	}
	if len([]rune(got[0])) != 100 || len([]rune(got[1])) != 100 || len([]rune(got[2])) != 50 {
		t.Errorf("segment lengths = %d,%d,%d, want 100,100,50",
			len(got[0]), len(got[1]), len(got[2]))
	}
}

func TestSegmentBoundsAndOrder(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)
	max := 120
	got := Segment(text, max)

	if len(got) == 0 {
		t.Fatal("Segment() returned no segments")
	}

	for i, s := range got {
		if s == "" {
			t.Errorf("segment %d is empty", i)
		}
		if n := len([]rune(s)); n > max {
			t.Errorf("segment %d has %d runes, exceeds %d", i, n, max)
		}
		if s != strings.TrimSpace(s) {
			t.Errorf("segment %d is not trimmed: %q", i, s)
		}
	}

	// Concatenation reconstructs the input modulo whitespace at cut points.
	joined := strings.Join(got, " ")
	if strings.Join(strings.Fields(joined), " ") != strings.Join(strings.Fields(text), " ") {
		t.Error("concatenated segments do not reconstruct the input")
	}
}

func TestSegmentUnicodeBoundaries(t *testing.T) {
	// Rune-based limits must not split multi-byte characters.
	text := strings.Repeat("héllo wörld ", 30)
	got := Segment(text, 50)

	for i, s := range got {
		if n := len([]rune(s)); n > 50 {
			t.Errorf("segment %d has %d runes, exceeds 50", i, n)
		}
		if !strings.Contains(strings.Join(strings.Fields(text), " "), strings.Fields(s)[0]) {
			t.Errorf("segment %d contains mangled content: %q", i, s)
		}
	}
}
