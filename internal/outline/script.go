package outline

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// script bundles everything that varies by language tag: normalization,
// length bands, structural heading patterns and the level table. One is
// resolved per document.
type script struct {
	lang Language

	// byChar counts characters instead of whitespace words.
	byChar bool
	fold   *strings.Replacer

	minLen, maxLen     int
	minWords, maxWords int

	structural ruleSet
	levels     ruleSet
}

const (
	cjkNum    = `[一二三四五六七八九十0-9]+`
	hangulNum = `[일이삼사오육칠팔구십0-9]+`
)

var fullWidth = strings.NewReplacer(
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	"．", ".",
)

var scripts = map[Language]*script{
	English: {
		lang:     English,
		minLen:   3,
		maxLen:   150,
		minWords: 2,
		maxWords: 15,
		structural: rules(0,
			`^\d+\.?\s+[A-Z]`,
			`^\d+\.\d+\.?\s+[A-Z]`,
			`^\d+\.\d+\.\d+\.?\s+[A-Z]`,
			`^[IVXLCDM]+\.?\s+[A-Z]`,
			`^[A-Z]\.?\s+[A-Z]`,
		),
		levels: concat(
			rules(1, `^\d+\.\s+`),
			rules(2, `^\d+\.\d+\.?\s+`),
			rules(3, `^\d+\.\d+\.\d+\.?\s+`),
			rules(1, `^[IVXLCDM]+\.?\s+`),
			rules(2, `^[A-Z]\.?\s+`),
		),
	},
	Japanese: {
		lang:     Japanese,
		byChar:   true,
		fold:     fullWidth,
		minLen:   2,
		maxLen:   200,
		minWords: 3,
		maxWords: 30,
		structural: rules(0,
			`^第`+cjkNum+`章`,
			`^第`+cjkNum+`節`,
			`^`+cjkNum+`\.`,
			`^[１-９０]+\.`,
			`^●`, `^○`, `^■`,
			`^【.*】$`,
		),
		levels: concat(
			rules(1, `^第`+cjkNum+`章`),
			rules(2, `^第`+cjkNum+`節`),
			rules(3, `^`+cjkNum+`\.`),
		),
	},
	Chinese: {
		lang:     Chinese,
		byChar:   true,
		minLen:   2,
		maxLen:   200,
		minWords: 3,
		maxWords: 30,
		structural: rules(0,
			`^第`+cjkNum+`章`,
			`^第`+cjkNum+`节`,
			`^`+cjkNum+`\.`,
			`^【.*】$`,
		),
		levels: concat(
			rules(1, `^第`+cjkNum+`章`),
			rules(2, `^第`+cjkNum+`节`),
			rules(2, `^`+cjkNum+`\.`),
		),
	},
	Korean: {
		lang:     Korean,
		byChar:   true,
		minLen:   2,
		maxLen:   200,
		minWords: 3,
		maxWords: 30,
		structural: rules(0,
			`^제`+hangulNum+`장`,
			`^제`+hangulNum+`절`,
			`^`+hangulNum+`\.`,
		),
		levels: concat(
			rules(1, `^제`+hangulNum+`장`),
			rules(2, `^제`+hangulNum+`절`),
			rules(2, `^`+hangulNum+`\.`),
		),
	},
	Arabic: {
		lang:     Arabic,
		minLen:   3,
		maxLen:   150,
		minWords: 2,
		maxWords: 15,
		structural: rules(0,
			`^[٠-٩]+\.`,
			`^[0-9]+\.`,
		),
		levels: rules(2, `^[٠-٩0-9]+\.`),
	},
}

func scriptFor(lang Language) *script {
	if s, ok := scripts[lang]; ok {
		return s
	}
	return scripts[English]
}

// Normalize applies NFKC plus the script's digit folding and trims the result.
func Normalize(text string, lang Language) string {
	return scriptFor(lang).normalize(text)
}

func (s *script) normalize(text string) string {
	if text == "" {
		return ""
	}
	text = norm.NFKC.String(text)
	if s.fold != nil {
		text = s.fold.Replace(text)
	}
	return strings.TrimSpace(text)
}

func (s *script) count(text string) int {
	if s.byChar {
		return len([]rune(text))
	}
	return wordCount(text)
}

func (s *script) lengthOK(text string) bool {
	n := len([]rune(text))
	return n >= s.minLen && n <= s.maxLen
}
