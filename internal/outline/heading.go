package outline

import (
	"regexp"
	"strings"
)

var titleCase = regexp.MustCompile(`^[A-Z][a-zA-Z\s\-'(),]+$`)

// sizeRatio compares a fragment size with the body size; 1 when no body size
// is known.
func sizeRatio(size, body float64) float64 {
	if body <= 0 {
		return 1
	}
	return size / body
}

// scoreHeading returns the heading score of f and whether f is eligible at
// all. Ineligible fragments (the title, out-of-band length, boilerplate)
// score zero.
func (d *document) scoreHeading(f Fragment) (int, bool) {
	text := f.Text
	if d.titleKey != "" && key(text) == d.titleKey {
		return 0, false
	}
	if !d.script.lengthOK(text) {
		return 0, false
	}
	if headingSkip.any(strings.ToLower(text)) {
		return 0, false
	}

	score := 0
	switch r := sizeRatio(f.Size, d.body); {
	case r >= 1.5:
		score += 4
	case r >= 1.3:
		score += 3
	case r >= 1.2:
		score += 2
	case r >= 1.1:
		score++
	}
	if f.Bold {
		score += 2
	}
	if d.script.structural.any(text) {
		score += 3
	}

	words := f.WordCount
	switch {
	case f.AllCaps && words >= 2:
		score += 2
	case titleCase.MatchString(text) && words >= 2:
		score++
	case strings.HasSuffix(text, ":") && len([]rune(text)) > 5:
		score++
	}
	if words >= d.script.minWords && words <= d.script.maxWords {
		score++
	}
	return score, true
}

func (d *document) isHeading(f Fragment) bool {
	score, ok := d.scoreHeading(f)
	return ok && score >= d.policy.MinHeadingScore
}

// classifyLevel assigns a raw level: structural pattern first, then the
// document's size hierarchy, then the size ratio.
func (d *document) classifyLevel(f Fragment, text string) int {
	if level, ok := d.script.levels.match(text); ok {
		return level
	}
	if level, ok := d.hierarchy.Level(f.Size); ok {
		return level
	}
	switch r := sizeRatio(f.Size, d.body); {
	case r >= 1.5:
		return 1
	case r >= 1.3:
		return 2
	default:
		return 3
	}
}
