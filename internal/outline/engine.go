// Package outline infers a title and a leveled heading outline from the
// positioned, font-annotated text of a PDF.
//
// The engine is heuristic. It detects the dominant script, builds a
// frequency table of font sizes to find body text, picks a title strategy
// from the document's vocabulary, scores every fragment for heading-ness and
// finally smooths the levels on each page so they never skip a step.
//
// All per-document state lives in a value created for each call, so one
// Engine can serve any number of documents concurrently.
package outline

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/ingest"
)

// Version identifies the heuristics. Cached results are keyed by it.
const Version = "1.2.0"

// FirstPage is the page index of the first PDF page in every output.
const FirstPage = 0

// Engine runs the outline pipeline under a fixed Policy.
type Engine struct {
	policy Policy
}

func New(p Policy) *Engine {
	if p.MinHeadingScore <= 0 {
		p.MinHeadingScore = DefaultPolicy().MinHeadingScore
	}
	return &Engine{policy: p}
}

func (e *Engine) Policy() Policy { return e.policy }

// Analysis is the full outcome for one document, including the
// intermediate data the result was derived from.
type Analysis struct {
	Language  Language
	DocType   DocType
	BodySize  float64
	Hierarchy Hierarchy
	Fragments []Fragment
	// Headings carry final levels, in output order.
	Headings []Candidate
	Result   Result
}

// document is the per-call context.
type document struct {
	policy    Policy
	lang      Language
	script    *script
	frags     []Fragment
	stats     *FontStats
	body      float64
	hierarchy Hierarchy
	docType   DocType
	title     string
	titleKey  string
}

// Extract returns the title and outline of doc.
func (e *Engine) Extract(doc *ingest.Document) Result {
	return e.Analyze(doc).Result
}

// Analyze runs the pipeline and keeps the intermediate values.
func (e *Engine) Analyze(doc *ingest.Document) *Analysis {
	d := &document{policy: e.policy, lang: English}
	a := &Analysis{Language: English, DocType: Standard, Result: Empty()}
	if doc == nil {
		return a
	}

	d.lang = DetectLanguage(rawText(doc))
	d.script = scriptFor(d.lang)
	a.Language = d.lang
	log.Debug().Str("file", doc.Path).Str("language", string(d.lang)).Msg("detected language")

	d.collect(doc)
	a.Fragments = d.frags
	if len(d.frags) == 0 {
		return a
	}

	d.stats = BuildFontStats(d.frags)
	d.body = d.stats.BodySize()
	d.hierarchy = d.stats.Hierarchy()
	a.BodySize = d.body
	a.Hierarchy = d.hierarchy
	log.Debug().Float64("body_size", d.body).Floats64("heading_sizes", d.hierarchy.Sizes()).Msg("font hierarchy")

	d.docType = Standard
	if d.policy.ClassifyDocuments {
		d.docType = ClassifyDocument(d.allText())
	}
	a.DocType = d.docType

	d.title = extractTitle(d.firstPage(), d.docType)
	d.titleKey = key(d.title)
	log.Debug().Str("doc_type", string(d.docType)).Str("title", d.title).Msg("title extracted")

	a.Headings = EnforceHierarchy(d.candidates(), d.policy.ClampFirstHeading)
	a.Result = Result{Title: d.title, Outline: entries(a.Headings)}
	return a
}

func rawText(doc *ingest.Document) string {
	var parts []string
	for _, p := range doc.Pages {
		for _, c := range p.Containers {
			if t := strings.TrimSpace(c.Text); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

// collect normalizes every container into a Fragment. Containers without character font data are skipped.
func (d *document) collect(doc *ingest.Document) {
	for i, p := range doc.Pages {
		page := FirstPage + i
		for _, c := range p.Containers {
			text := d.script.normalize(c.Text)
			if text == "" || len(c.Chars) == 0 {
				continue
			}
			size := RoundSize(c.AverageSize())
			font := c.DominantFont()
			f := newFragment(text, page, size, font, c.HasBold(), c.X0, c.Y0, d.script)
			d.frags = append(d.frags, f)
		}
	}
}

func (d *document) allText() string {
	parts := make([]string, len(d.frags))
	for i, f := range d.frags {
		parts[i] = f.Text
	}
	return strings.Join(parts, " ")
}

func (d *document) firstPage() []Fragment {
	var out []Fragment
	for _, f := range d.frags {
		if f.Page == FirstPage {
			out = append(out, f)
		}
	}
	return out
}

// candidates validates fragments in reading order and drops repeats of an
// already accepted heading text.
func (d *document) candidates() []Candidate {
	ordered := make([]Fragment, len(d.frags))
	copy(ordered, d.frags)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Page != ordered[j].Page {
			return ordered[i].Page < ordered[j].Page
		}
		return ordered[i].Y > ordered[j].Y
	})

	seen := make(map[string]bool)
	var out []Candidate
	for _, f := range ordered {
		if !d.isHeading(f) {
			continue
		}
		text := collapse(f.Text)
		k := strings.ToLower(text)
		if seen[k] || k == d.titleKey || len([]rune(text)) < d.script.minLen {
			continue
		}
		level := d.classifyLevel(f, text)
		out = append(out, Candidate{Text: text, Page: f.Page, Level: level, Y: f.Y})
		seen[k] = true
		log.Debug().Str("text", text).Int("level", level).Int("page", f.Page).Msg("heading accepted")
	}
	return out
}
