package outline

import (
	"regexp"
	"sort"
	"strings"
)

const (
	minFlyerTitleScore  = 4
	minFormalTitleScore = 6
	maxFlyerTitleWords  = 12
)

var (
	flyerContact  = []string{"www.", ".com", "address:", "phone:", "rsvp:", "parents or guardians"}
	flyerEmotive  = []string{"hope", "see", "there"}
	descriptive   = []string{"overview", "introduction", "guide", "manual", "report", "analysis"}
	leadingNumber = regexp.MustCompile(`^\d+\.`)
	leadingUpper  = regexp.MustCompile(`^[A-Z]`)
)

type titleCandidate struct {
	frag  Fragment
	score int
}

// extractTitle picks the document title from first-page fragments using the
// strategy for the document type. It returns "" when nothing qualifies.
func extractTitle(first []Fragment, dt DocType) string {
	if len(first) == 0 {
		return ""
	}
	switch dt {
	case Catalog:
		// The visual H1 heads a catalog; it is not wrapped as a title.
		return ""
	case Invitation:
		return flyerTitle(first)
	case Form:
		return formTitle(first)
	default:
		return formalTitle(first)
	}
}

func pageExtent(frags []Fragment) (maxY, maxSize float64) {
	for _, f := range frags {
		if f.Y > maxY {
			maxY = f.Y
		}
		if f.Size > maxSize {
			maxSize = f.Size
		}
	}
	return maxY, maxSize
}

func ratio(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return v / limit
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func flyerTitle(first []Fragment) string {
	maxY, maxSize := pageExtent(first)

	var best *titleCandidate
	for _, f := range first {
		lower := strings.ToLower(f.Text)
		if containsAny(lower, flyerContact) {
			continue
		}
		words := wordCount(f.Text)
		if words > maxFlyerTitleWords {
			continue
		}

		score := 0
		if ratio(f.Y, maxY) >= 0.7 {
			score += 2
		}
		if ratio(f.Size, maxSize) >= 0.9 {
			score += 3
		}
		if words >= 2 && words <= 8 {
			score += 2
		}
		if strings.Contains(f.Text, "!") || containsAny(lower, flyerEmotive) {
			score++
		}

		if score >= minFlyerTitleScore && (best == nil || score > best.score) {
			best = &titleCandidate{frag: f, score: score}
		}
	}
	if best == nil {
		return ""
	}
	return best.frag.Text
}

func formTitle(first []Fragment) string {
	for _, f := range first {
		if strings.Contains(strings.ToLower(f.Text), "form") && wordCount(f.Text) >= 3 {
			return f.Text
		}
	}
	return ""
}

func formalTitle(first []Fragment) string {
	maxY, maxSize := pageExtent(first)

	var cands []titleCandidate
	for _, f := range first {
		lower := strings.ToLower(f.Text)
		if titleSkip.any(lower) {
			continue
		}
		words := wordCount(f.Text)

		score := 0
		switch pos := ratio(f.Y, maxY); {
		case pos >= 0.8:
			score += 3
		case pos >= 0.6:
			score += 2
		}
		switch size := ratio(f.Size, maxSize); {
		case size >= 0.95:
			score += 3
		case size >= 0.85:
			score += 2
		}
		switch {
		case words >= 3 && words <= 20:
			score += 2
		case words > 20 && words <= 30:
			score++
		}
		if !leadingNumber.MatchString(f.Text) && !strings.HasSuffix(f.Text, ":") {
			score += 2
		}
		if leadingUpper.MatchString(f.Text) && !f.AllCaps {
			score++
		}
		if containsAny(lower, descriptive) {
			score++
		}

		if score >= minFormalTitleScore {
			cands = append(cands, titleCandidate{frag: f, score: score})
		}
	}
	if len(cands) == 0 {
		return ""
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].frag.Size > cands[j].frag.Size
	})
	// A lone fragment on the first page is content, not a title over content.
	if len(first) < 2 {
		return ""
	}
	return cands[0].frag.Text
}
