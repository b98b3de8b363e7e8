// Package pipeline runs one PDF through preflight, ingestion and the outline
// engine. The batch runner, the persona runner and the HTTP service all go
// through a Processor.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/ingest"
	"github.com/local/outliner/internal/ingest/mupdf"
	"github.com/local/outliner/internal/ingest/pdfreader"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/outline"
)

// Outliner produces the analysis of one local PDF.
type Outliner interface {
	Process(ctx context.Context, path string) (*outline.Analysis, error)
}

// SourceFor returns the ingestion backend registered under name.
func SourceFor(name string) (ingest.Source, error) {
	switch name {
	case "", "pdf":
		return pdfreader.New(), nil
	case "mupdf":
		return mupdf.New(), nil
	default:
		return nil, fmt.Errorf("unknown pdf backend %q", name)
	}
}

type Options struct {
	Source    ingest.Source
	Engine    *outline.Engine
	Preflight bool
	// MinChars below which a document is reported as having no text layer.
	MinChars int
}

type Processor struct {
	source    ingest.Source
	engine    *outline.Engine
	preflight bool
	minChars  int
}

func New(opts Options) *Processor {
	if opts.Engine == nil {
		opts.Engine = outline.New(outline.DefaultPolicy())
	}
	return &Processor{
		source:    opts.Source,
		engine:    opts.Engine,
		preflight: opts.Preflight,
		minChars:  opts.MinChars,
	}
}

// Process ingests path and runs the engine on it. The error is always an
// ingestion failure; callers degrade it to outline.Empty. A document without
// text is not an error and yields an empty result.
func (p *Processor) Process(ctx context.Context, path string) (*outline.Analysis, error) {
	if p.preflight {
		info, err := ingest.Preflight(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", path).Int("pages", info.Pages).Msg("preflight passed")
	}

	doc, err := p.source.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	if diag := ingest.CheckText(doc, p.minChars); !diag.HasExtractableText {
		log.Warn().
			Str("file", path).
			Int("pages", diag.TotalPages).
			Int("chars", diag.TotalCharsInSample).
			Msg("no extractable text; scanned documents are not supported")
	}
	return p.engine.Analyze(doc), nil
}

// Result labels used in metrics.
const (
	ResultOK     = "ok"
	ResultEmpty  = "empty"
	ResultFailed = "failed"
)

// Observe records the outcome of one document under mode and returns its
// result label.
func Observe(mode string, a *outline.Analysis, err error, dur time.Duration) string {
	result := ResultOK
	switch {
	case err != nil || a == nil:
		result = ResultFailed
	case len(a.Result.Outline) == 0 && a.Result.Title == "":
		result = ResultEmpty
	}
	metrics.ObserveDocument(mode, result, dur)
	if result == ResultFailed {
		return result
	}

	metrics.IncDocumentType(string(a.Language), string(a.DocType))
	byLevel := map[string]int{}
	for _, e := range a.Result.Outline {
		byLevel[e.Level]++
	}
	for level, n := range byLevel {
		metrics.AddHeadings(level, n)
	}
	return result
}
