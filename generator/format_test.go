package generator

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0h 0m 0s"},
		{999, "0h 0m 0s"},
		{5425000, "1h 30m 25s"},
		{3600000, "1h 0m 0s"},
		{59999, "0h 0m 59s"},
		{100 * 3600000, "100h 0m 0s"},
		{-5000, "0h 0m 0s"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, FormatDuration(tc.ms), "ms=%d", tc.ms)
	}
}

// TestFormatDurationRoundTrip checks that the rendered parts add back up to
// the input floored to whole seconds.
func TestFormatDurationRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ms := rapid.Int64Range(0, 1_000*3600000).Draw(t, "ms")

		var h, m, s int64
		n, err := fmt.Sscanf(FormatDuration(ms), "%dh %dm %ds", &h, &m, &s)
		if err != nil || n != 3 {
			t.Fatalf("unparseable duration %q: %v", FormatDuration(ms), err)
		}
		if m >= 60 || s >= 60 {
			t.Fatalf("minutes or seconds overflow: %dm %ds", m, s)
		}
		if got := h*3600000 + m*60000 + s*1000; got != ms-ms%1000 {
			t.Fatalf("parts add up to %d, want %d", got, ms-ms%1000)
		}
	})
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lake garda", "Lake Garda"},
		{"mcDonald ranch", "McDonald Ranch"},
		{"McDonald Site", "McDonald Site"},
		{"xc", "Xc"},
		{"", ""},
		{"two  spaces", "Two  Spaces"},
		{"élan vital", "Élan Vital"},
		{"3 peaks", "3 Peaks"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, TitleCase(tc.in), "in=%q", tc.in)
	}
}

// TestTitleCaseOnlyTouchesFirstRune checks that everything after the first
// rune of each word is left alone.
func TestTitleCaseOnlyTouchesFirstRune(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.StringMatching(`[a-zA-Z ]{0,40}`).Draw(t, "in")
		out := TitleCase(in)

		inWords := strings.Split(in, " ")
		outWords := strings.Split(out, " ")
		if len(inWords) != len(outWords) {
			t.Fatalf("word count changed: %q -> %q", in, out)
		}
		for i := range inWords {
			if inWords[i] == "" {
				if outWords[i] != "" {
					t.Fatalf("empty word became %q", outWords[i])
				}
				continue
			}
			_, size := utf8.DecodeRuneInString(inWords[i])
			if inWords[i][size:] != outWords[i][size:] {
				t.Fatalf("tail changed: %q -> %q", inWords[i], outWords[i])
			}
			if strings.ToUpper(inWords[i][:size]) != outWords[i][:size] {
				t.Fatalf("first letter not upper: %q", outWords[i])
			}
		}
	})
}
