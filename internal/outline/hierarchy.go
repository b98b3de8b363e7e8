package outline

import (
	"sort"
	"strconv"
)

const maxLevel = 3

// Candidate is a validated heading with its raw level.
type Candidate struct {
	Text  string
	Page  int
	Level int
	// Y is the vertical position in page coordinates; larger is higher.
	Y float64
}

// Entry is one line of the emitted outline.
type Entry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// LevelTag renders a numeric level as H1..H3. Anything else renders as H3.
func LevelTag(level int) string {
	if level < 1 || level > maxLevel {
		level = maxLevel
	}
	return "H" + strconv.Itoa(level)
}

// EnforceHierarchy walks each page top to bottom and limits every heading to
// at most one level deeper than the heading before it on the same page. With
// clampFirst the first heading of a page is also capped at level 2.
//
// The returned levels follow the page order of the input, pages ascending.
func EnforceHierarchy(cands []Candidate, clampFirst bool) []Candidate {
	if len(cands) == 0 {
		return nil
	}

	byPage := make(map[int][]Candidate)
	var pages []int
	for _, c := range cands {
		if _, ok := byPage[c.Page]; !ok {
			pages = append(pages, c.Page)
		}
		byPage[c.Page] = append(byPage[c.Page], c)
	}
	sort.Ints(pages)

	out := make([]Candidate, 0, len(cands))
	for _, p := range pages {
		hs := byPage[p]
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].Y > hs[j].Y })

		current := 0
		for _, h := range hs {
			level := h.Level
			switch {
			case current == 0:
				if clampFirst && level > 2 {
					level = 2
				}
			case level <= current+1:
			default:
				level = min(current+1, maxLevel)
			}
			current = level
			h.Level = level
			out = append(out, h)
		}
	}
	return out
}

func entries(hs []Candidate) []Entry {
	out := make([]Entry, 0, len(hs))
	for _, h := range hs {
		out = append(out, Entry{Level: LevelTag(h.Level), Text: h.Text, Page: h.Page})
	}
	return out
}
