package mupdf

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/local/outliner/internal/ingest"
)

// advance approximates glyph width as a fraction of the font size; the HTML
// output carries line origins but no line extents.
const advance = 0.5

type run struct {
	text string
	font string
	size float64
}

type stextLine struct {
	top, left, height float64
	runs              []run
}

type stextPage struct {
	width, height float64
	raw           []stextLine
}

type style struct {
	font string
	size float64
}

// parseStext reads MuPDF's structured-text HTML for one page. Each <p>
// carries the line origin measured from the top of the page; each <span>
// carries the font family and size; <b> marks bold text.
func parseStext(markup string) (*stextPage, error) {
	z := html.NewTokenizer(strings.NewReader(markup))
	page := &stextPage{}
	var cur *stextLine
	var styles []style
	bold := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("tokenize stext: %w", err)
			}
			if cur != nil {
				page.raw = append(page.raw, *cur)
			}
			return page, nil

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			css := styleAttr(tok)
			switch tok.DataAtom {
			case atom.Div:
				if id := attr(tok, "id"); strings.HasPrefix(id, "page") {
					page.width = css["width"]
					page.height = css["height"]
				}
			case atom.P:
				if cur != nil {
					page.raw = append(page.raw, *cur)
				}
				cur = &stextLine{top: css["top"], left: css["left"], height: css["line-height"]}
			case atom.Span:
				st := style{size: css["font-size"], font: fontFamily(tok)}
				if st.size == 0 && len(styles) > 0 {
					st.size = styles[len(styles)-1].size
				}
				styles = append(styles, st)
			case atom.B:
				bold++
			}

		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.P:
				if cur != nil {
					page.raw = append(page.raw, *cur)
					cur = nil
				}
			case atom.Span:
				if len(styles) > 0 {
					styles = styles[:len(styles)-1]
				}
			case atom.B:
				if bold > 0 {
					bold--
				}
			}

		case html.TextToken:
			if cur == nil {
				continue
			}
			text := string(z.Text())
			if text == "" {
				continue
			}
			var st style
			if len(styles) > 0 {
				st = styles[len(styles)-1]
			}
			font := st.font
			if bold > 0 && !strings.Contains(strings.ToLower(font), "bold") {
				font += ",Bold"
			}
			cur.runs = append(cur.runs, run{text: text, font: font, size: st.size})
		}
	}
}

// lines converts the parsed page into baseline-oriented lines, top of page
// first, in PDF user space.
func (p *stextPage) lines() []ingest.Line {
	out := make([]ingest.Line, 0, len(p.raw))
	for _, raw := range p.raw {
		var b strings.Builder
		var chars []ingest.CharRun
		var size float64
		for _, r := range raw.runs {
			b.WriteString(r.text)
			size = math.Max(size, r.size)
			for _, c := range r.text {
				if !unicode.IsSpace(c) {
					chars = append(chars, ingest.CharRun{Font: r.font, Size: r.size})
				}
			}
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		h := raw.height
		if h == 0 {
			h = size
		}
		if size == 0 {
			size = h
		}
		out = append(out, ingest.Line{
			Text:   text,
			X0:     raw.left,
			X1:     raw.left + float64(utf8.RuneCountInString(text))*size*advance,
			Y:      p.height - raw.top - h,
			Height: size,
			Chars:  chars,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Y > out[j].Y })
	return out
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// styleAttr returns the numeric pt values of the inline style attribute.
func styleAttr(tok html.Token) map[string]float64 {
	out := map[string]float64{}
	for _, decl := range strings.Split(attr(tok, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		v = strings.TrimSuffix(strings.TrimSpace(v), "pt")
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[strings.TrimSpace(k)] = f
		}
	}
	return out
}

// fontFamily returns the first family named in the span style, without the
// generic fallback MuPDF appends.
func fontFamily(tok html.Token) string {
	for _, decl := range strings.Split(attr(tok, "style"), ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(k) != "font-family" {
			continue
		}
		family, _, _ := strings.Cut(v, ",")
		return strings.Trim(strings.TrimSpace(family), `"'`)
	}
	return ""
}
