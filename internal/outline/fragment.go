package outline

import (
	"strings"
	"unicode"
)

// Fragment is one positioned, font-annotated block of text after
// normalization. Y is the bottom of the block in page coordinates, so a
// larger Y is higher on the page.
type Fragment struct {
	Text     string
	Page     int
	Size     float64
	FontName string
	Bold     bool
	X, Y     float64

	Length    int
	WordCount int
	Lines     int
	AllCaps   bool
	MixedCase bool
}

func newFragment(text string, page int, size float64, font string, bold bool, x, y float64, sc *script) Fragment {
	f := Fragment{
		Text:     text,
		Page:     page,
		Size:     size,
		FontName: font,
		Bold:     bold,
		X:        x,
		Y:        y,
		Length:   len([]rune(text)),
		Lines:    strings.Count(text, "\n") + 1,
		AllCaps:  isUpper(text),
	}
	f.MixedCase = !f.AllCaps && !isLower(text)
	f.WordCount = sc.count(text)
	return f
}

// isUpper reports whether s has at least one cased letter and no lower or
// title case letters.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func wordCount(s string) int { return len(strings.Fields(s)) }

// collapse joins all whitespace runs into single spaces.
func collapse(s string) string { return strings.Join(strings.Fields(s), " ") }

// key is the case-insensitive identity used for title and duplicate checks.
func key(s string) string { return strings.ToLower(collapse(s)) }
