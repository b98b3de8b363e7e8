// Package mupdf is the MuPDF ingestion backend. It renders each page to
// MuPDF's structured-text HTML with go-fitz and reads lines, positions and
// font runs back out of that markup.
package mupdf

import (
	"context"

	fitz "github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/ingest"
)

type Source struct {
	Layout ingest.Layout
}

func New() *Source {
	return &Source{Layout: ingest.DefaultLayout()}
}

func (s *Source) Name() string { return "mupdf" }

func (s *Source) Load(ctx context.Context, path string) (doc *ingest.Document, err error) {
	defer ingest.Recover("parse", path, &err)

	fd, err := fitz.New(path)
	if err != nil {
		return nil, &ingest.Error{Op: "open", Path: path, Err: err}
	}
	defer fd.Close()

	doc = &ingest.Document{Path: path}
	for i := 0; i < fd.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := ingest.Page{Index: i}
		markup, err := fd.HTML(i, false)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Str("file", path).Msg("mupdf page render failed")
			doc.Pages = append(doc.Pages, p)
			continue
		}
		st, err := parseStext(markup)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Str("file", path).Msg("mupdf page markup unreadable")
			doc.Pages = append(doc.Pages, p)
			continue
		}
		if st.height == 0 {
			if r, err := fd.Bound(i); err == nil {
				st.height = float64(r.Dy())
				st.width = float64(r.Dx())
			}
		}
		p.Width, p.Height = st.width, st.height
		p.Containers = s.Layout.Blocks(st.lines())
		doc.Pages = append(doc.Pages, p)
	}
	log.Debug().Str("file", path).Int("pages", len(doc.Pages)).Int("containers", doc.Containers()).Msg("pdf ingested with mupdf")
	return doc, nil
}
