package generator

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	msPerHour   = 3600000
	msPerMinute = 60000
	msPerSecond = 1000
)

// FormatDuration renders milliseconds as "{h}h {m}m {s}s" using floor
// division. Hours are not wrapped into days.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / msPerHour
	minutes := (ms % msPerHour) / msPerMinute
	seconds := (ms % msPerMinute) / msPerSecond
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// TitleCase uppercases the first rune of every space separated word and
// leaves the rest of the word as is, so "mcDonald ranch" becomes
// "McDonald Ranch".
func TitleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 || r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
