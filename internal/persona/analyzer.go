package persona

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/pipeline"
)

const (
	defaultTopSections  = 5
	defaultRefinedRunes = 600
)

// Document is one resolved input PDF.
type Document struct {
	Name string
	Path string
}

// Analyzer ranks the sections of docs for a persona and a job.
type Analyzer interface {
	Analyze(ctx context.Context, docs []Document, persona, job string) (*Output, error)
}

// OutlineAnalyzer is the baseline ranker. Every outline heading is a
// section; sections score by how many persona and job terms appear in the
// heading (counted twice) and in the text beneath it.
type OutlineAnalyzer struct {
	proc         pipeline.Outliner
	TopSections  int
	RefinedRunes int
}

func NewOutlineAnalyzer(proc pipeline.Outliner) *OutlineAnalyzer {
	return &OutlineAnalyzer{proc: proc, TopSections: defaultTopSections, RefinedRunes: defaultRefinedRunes}
}

type rankedSection struct {
	doc     string
	docIdx  int
	pos     int
	heading outline.Candidate
	text    string
	score   int
}

func (a *OutlineAnalyzer) Analyze(ctx context.Context, docs []Document, persona, job string) (*Output, error) {
	query := terms(persona + " " + job)

	var sections []rankedSection
	analyzed := 0
	for i, d := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		an, err := a.proc.Process(ctx, d.Path)
		pipeline.Observe("persona", an, err, time.Since(start))
		if err != nil {
			log.Warn().Err(err).Str("file", d.Name).Msg("skipping document")
			continue
		}
		analyzed++

		texts := sectionTexts(an, a.RefinedRunes)
		for j, h := range an.Headings {
			score := 2*overlap(query, terms(h.Text)) + overlap(query, terms(texts[j]))
			sections = append(sections, rankedSection{doc: d.Name, docIdx: i, pos: j, heading: h, text: texts[j], score: score})
		}
		log.Debug().Str("file", d.Name).Int("sections", len(an.Headings)).Msg("document analyzed")
	}
	if analyzed == 0 {
		return nil, errors.New("no document could be analyzed")
	}

	sort.SliceStable(sections, func(i, j int) bool {
		x, y := sections[i], sections[j]
		switch {
		case x.score != y.score:
			return x.score > y.score
		case x.heading.Level != y.heading.Level:
			return x.heading.Level < y.heading.Level
		case x.docIdx != y.docIdx:
			return x.docIdx < y.docIdx
		default:
			return x.pos < y.pos
		}
	})
	if n := a.TopSections; n > 0 && len(sections) > n {
		sections = sections[:n]
	}

	out := &Output{ExtractedSections: []Section{}, SubsectionAnalysis: []Subsection{}}
	for rank, s := range sections {
		out.ExtractedSections = append(out.ExtractedSections, Section{
			Document:       s.doc,
			SectionTitle:   s.heading.Text,
			ImportanceRank: rank + 1,
			PageNumber:     s.heading.Page,
		})
		text := s.text
		if text == "" {
			text = s.heading.Text
		}
		out.SubsectionAnalysis = append(out.SubsectionAnalysis, Subsection{
			Document:    s.doc,
			RefinedText: text,
			PageNumber:  s.heading.Page,
		})
	}
	return out, nil
}

// sectionTexts returns, for each heading of an, the text that follows it up
// to the next heading, truncated to limit runes.
func sectionTexts(an *outline.Analysis, limit int) []string {
	frags := make([]outline.Fragment, len(an.Fragments))
	copy(frags, an.Fragments)
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Page != frags[j].Page {
			return frags[i].Page < frags[j].Page
		}
		return frags[i].Y > frags[j].Y
	})

	headingText := make(map[string]bool, len(an.Headings))
	for _, h := range an.Headings {
		headingText[normKey(h.Text)] = true
	}

	out := make([]string, len(an.Headings))
	for i, h := range an.Headings {
		var parts []string
		for _, f := range frags {
			if !below(f, h.Page, h.Y) {
				continue
			}
			if i+1 < len(an.Headings) {
				next := an.Headings[i+1]
				if !above(f, next.Page, next.Y) {
					break
				}
			}
			if headingText[normKey(f.Text)] {
				continue
			}
			parts = append(parts, f.Text)
		}
		out[i] = truncate(strings.Join(strings.Fields(strings.Join(parts, " ")), " "), limit)
	}
	return out
}

func below(f outline.Fragment, page int, y float64) bool {
	return f.Page > page || (f.Page == page && f.Y < y)
}

func above(f outline.Fragment, page int, y float64) bool {
	return f.Page < page || (f.Page == page && f.Y > y)
}

func normKey(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return strings.TrimSpace(string(r[:limit])) + "..."
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"that": true, "this": true, "are": true, "was": true, "you": true,
	"your": true, "into": true, "about": true, "our": true, "have": true,
	"will": true, "all": true, "who": true,
}

// terms splits s into lower-cased words of three or more letters, minus
// stopwords.
func terms(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= 3 && !stopwords[w] {
			out[w] = true
		}
	}
	return out
}

func overlap(query, words map[string]bool) int {
	n := 0
	for w := range query {
		if words[w] {
			n++
		}
	}
	return n
}
