// Package ingest turns PDF files into pages of positioned text containers
// carrying character-level font runs. Backends live in subpackages; this
// package holds the shared model, the line and block grouping used by every
// backend, and file preflight checks.
package ingest

import (
	"context"
	"strings"
)

// CharRun is the font of one character of a container.
type CharRun struct {
	Font string
	Size float64
}

// Container is a block of one or more text lines. Coordinates are PDF user
// space (origin bottom left, y up); X0,Y0 is the lower left corner.
type Container struct {
	Text           string
	X0, Y0, X1, Y1 float64
	Chars          []CharRun
}

// AverageSize is the mean character size, 0 without font data.
func (c Container) AverageSize() float64 {
	if len(c.Chars) == 0 {
		return 0
	}
	var sum float64
	for _, ch := range c.Chars {
		sum += ch.Size
	}
	return sum / float64(len(c.Chars))
}

// DominantFont is the most frequent font name. Ties go to the font seen
// first.
func (c Container) DominantFont() string {
	counts := make(map[string]int)
	best, n := "", 0
	for _, ch := range c.Chars {
		counts[ch.Font]++
	}
	for _, ch := range c.Chars {
		if counts[ch.Font] > n {
			best, n = ch.Font, counts[ch.Font]
		}
	}
	return best
}

// HasBold reports whether any character uses a bold face.
func (c Container) HasBold() bool {
	for _, ch := range c.Chars {
		if ch.Font != "" && strings.Contains(strings.ToLower(ch.Font), "bold") {
			return true
		}
	}
	return false
}

// Page is one PDF page. Index is 0-based.
type Page struct {
	Index         int
	Width, Height float64
	Containers    []Container
}

// Document is the ingestion output for one file.
type Document struct {
	Path  string
	Pages []Page
}

// Containers counts containers over all pages.
func (d *Document) Containers() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Containers)
	}
	return n
}

// Source loads a PDF from the local filesystem.
type Source interface {
	Name() string
	Load(ctx context.Context, path string) (*Document, error)
}
