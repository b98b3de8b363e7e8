package ingest

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Glyph is one positioned text item as reported by a PDF backend. Y is the
// baseline in PDF user space.
type Glyph struct {
	S    string
	X, Y float64
	W    float64
	Font string
	Size float64
}

// Line is a run of glyphs sharing a baseline.
type Line struct {
	Text   string
	X0, X1 float64
	Y      float64 // baseline
	Height float64
	Chars  []CharRun
}

// Layout holds the grouping tolerances, all relative to font size.
type Layout struct {
	RowTolerance float64 // baseline drift allowed within a line
	WordSpace    float64 // gap that becomes a space
	ColumnGap    float64 // gap that splits a row into separate lines
	LineMargin   float64 // vertical gap and alignment slack between lines of a block
}

func DefaultLayout() Layout {
	return Layout{
		RowTolerance: 0.3,
		WordSpace:    0.2,
		ColumnGap:    3.0,
		LineMargin:   0.5,
	}
}

// Lines groups glyphs into lines, top of page first.
func (l Layout) Lines(glyphs []Glyph) []Line {
	gs := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" && g.S != " " {
			continue
		}
		gs = append(gs, g)
	}
	if len(gs) == 0 {
		return nil
	}
	sort.SliceStable(gs, func(i, j int) bool {
		if gs[i].Y != gs[j].Y {
			return gs[i].Y > gs[j].Y
		}
		return gs[i].X < gs[j].X
	})

	var rows [][]Glyph
	var row []Glyph
	rowY := gs[0].Y
	for _, g := range gs {
		tol := math.Max(2, l.RowTolerance*g.Size)
		if len(row) > 0 && math.Abs(g.Y-rowY) > tol {
			rows = append(rows, row)
			row = nil
		}
		if len(row) == 0 {
			rowY = g.Y
		}
		row = append(row, g)
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	var out []Line
	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].X < r[j].X })
		out = append(out, l.splitRow(r)...)
	}
	return out
}

func (l Layout) splitRow(row []Glyph) []Line {
	var out []Line
	var cur *Line
	var b strings.Builder
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			out = append(out, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, g := range row {
		if cur != nil {
			gap := g.X - cur.X1
			size := math.Max(g.Size, 1)
			switch {
			case gap > l.ColumnGap*size:
				flush()
			case gap > l.WordSpace*size && !endsWithSpace(b.String()) && g.S != " ":
				b.WriteByte(' ')
			}
		}
		if cur == nil {
			if g.S == " " {
				continue
			}
			cur = &Line{X0: g.X, X1: g.X, Y: g.Y}
		}
		b.WriteString(g.S)
		cur.X1 = math.Max(cur.X1, g.X+g.W)
		cur.Height = math.Max(cur.Height, g.Size)
		for _, r := range g.S {
			if !unicode.IsSpace(r) {
				cur.Chars = append(cur.Chars, CharRun{Font: g.Font, Size: g.Size})
			}
		}
	}
	flush()
	return out
}

func endsWithSpace(s string) bool {
	return s == "" || strings.HasSuffix(s, " ")
}

// Blocks merges vertically adjacent, similarly sized and aligned lines into
// containers. Lines must be ordered top of page first.
func (l Layout) Blocks(lines []Line) []Container {
	var out []Container
	var cur []Line
	flush := func() {
		if len(cur) > 0 {
			out = append(out, container(cur))
			cur = nil
		}
	}
	for _, ln := range lines {
		if len(cur) > 0 && !l.joins(cur[len(cur)-1], ln) {
			flush()
		}
		cur = append(cur, ln)
	}
	flush()
	return out
}

// joins reports whether next continues the block whose last line is prev.
func (l Layout) joins(prev, next Line) bool {
	h := math.Max(prev.Height, next.Height)
	if h <= 0 {
		return false
	}
	d := l.LineMargin * h
	if math.Abs(prev.Height-next.Height) > d {
		return false
	}
	// Baselines one line height apart plus the margin.
	if gap := prev.Y - next.Y; gap <= 0 || gap > h+d {
		return false
	}
	left := math.Abs(prev.X0-next.X0) <= d
	right := math.Abs(prev.X1-next.X1) <= d
	center := math.Abs((prev.X0+prev.X1)/2-(next.X0+next.X1)/2) <= d
	return left || right || center
}

func container(lines []Line) Container {
	c := Container{
		X0: lines[0].X0,
		X1: lines[0].X1,
		Y0: lines[0].Y,
		Y1: lines[0].Y + lines[0].Height,
	}
	texts := make([]string, 0, len(lines))
	for _, ln := range lines {
		texts = append(texts, ln.Text)
		c.X0 = math.Min(c.X0, ln.X0)
		c.X1 = math.Max(c.X1, ln.X1)
		c.Y0 = math.Min(c.Y0, ln.Y)
		c.Y1 = math.Max(c.Y1, ln.Y+ln.Height)
		c.Chars = append(c.Chars, ln.Chars...)
	}
	c.Text = strings.Join(texts, "\n")
	return c
}
