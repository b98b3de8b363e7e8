// Package pdfreader is the pure-Go ingestion backend built on
// github.com/ledongthuc/pdf.
package pdfreader

import (
	"context"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/ingest"
)

// Source extracts glyphs with ledongthuc/pdf and groups them with an
// ingest.Layout.
type Source struct {
	Layout ingest.Layout
}

func New() *Source {
	return &Source{Layout: ingest.DefaultLayout()}
}

func (s *Source) Name() string { return "pdf" }

func (s *Source) Load(ctx context.Context, path string) (doc *ingest.Document, err error) {
	defer ingest.Recover("parse", path, &err)

	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, &ingest.Error{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	doc = &ingest.Document{Path: path}
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		p := ingest.Page{Index: i - 1}
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, p)
			continue
		}
		p.Width, p.Height = mediaBox(page)
		p.Containers = s.Layout.Blocks(s.Layout.Lines(glyphs(page)))
		doc.Pages = append(doc.Pages, p)
	}
	log.Debug().Str("file", path).Int("pages", total).Int("containers", doc.Containers()).Msg("pdf ingested")
	return doc, nil
}

func glyphs(page pdflib.Page) []ingest.Glyph {
	content := page.Content()
	out := make([]ingest.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		out = append(out, ingest.Glyph{
			S:    t.S,
			X:    t.X,
			Y:    t.Y,
			W:    t.W,
			Font: t.Font,
			Size: t.FontSize,
		})
	}
	return out
}

func mediaBox(page pdflib.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.Len() < 4 {
		return 0, 0
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	return w, h
}
