package ingest

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"
)

const pdfMIME = "application/pdf"

// FileInfo is what preflight learned about a file before parsing it.
type FileInfo struct {
	Path     string
	MIMEType string
	Pages    int
}

// Preflight checks the magic bytes of path and counts its pages with pdfcpu.
// A file that is not a PDF fails with ErrNotPDF. A page count failure is
// only logged: pdfcpu is stricter than the text backends and many slightly
// broken files still yield text.
func Preflight(path string) (*FileInfo, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &Error{Op: "detect", Path: path, Err: err}
	}
	info := &FileInfo{Path: path, MIMEType: mtype.String()}
	log.Debug().Str("mime", info.MIMEType).Str("file", path).Msg("detected file type")

	if !mtype.Is(pdfMIME) {
		return info, &Error{Op: "detect", Path: path, Err: fmt.Errorf("%w: %s", ErrNotPDF, info.MIMEType)}
	}

	n, err := api.PageCountFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("pdf page count failed")
		return info, nil
	}
	info.Pages = n
	return info, nil
}
