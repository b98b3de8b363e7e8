package outline

import "unicode"

// Language is the dominant script tag of a document.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
	Chinese  Language = "zh"
	Korean   Language = "ko"
	Arabic   Language = "ar"
)

// DetectLanguage classifies text by the share of script-specific letters.
// Kana counts toward both Japanese and CJK, so mixed kana/kanji text is
// tagged ja before the CJK share is considered.
func DetectLanguage(text string) Language {
	var total, japanese, cjk, korean, arabic int
	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x309F, r >= 0x30A0 && r <= 0x30FF:
			japanese++
			cjk++
		case r >= 0x4E00 && r <= 0x9FAF:
			cjk++
		case r >= 0xAC00 && r <= 0xD7AF:
			korean++
		case r >= 0x0600 && r <= 0x06FF:
			arabic++
		}
		if unicode.IsLetter(r) {
			total++
		}
	}
	if total == 0 {
		return English
	}

	over := func(n int, share float64) bool { return float64(n) > float64(total)*share }
	switch {
	case over(japanese, 0.1):
		return Japanese
	case over(korean, 0.2):
		return Korean
	case over(cjk, 0.3):
		return Chinese
	case over(arabic, 0.2):
		return Arabic
	default:
		return English
	}
}
