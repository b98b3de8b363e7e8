package mupdf

import (
	"testing"

	"github.com/local/outliner/internal/ingest"
)

const samplePage = `<div id="page0" style="width:612.0pt;height:792.0pt">
<p style="top:72.0pt;left:72.0pt;line-height:24.0pt"><span style="font-family:Helvetica,sans-serif;font-size:24.0pt"><b>Introduction</b></span></p>
<p style="top:110.0pt;left:72.0pt;line-height:10.0pt"><span style="font-family:Times,serif;font-size:10.0pt">Body text &amp; more</span></p>
<p style="top:500.0pt;left:72.0pt;line-height:10.0pt"></p>
</div>`

func TestParseStext(t *testing.T) {
	st, err := parseStext(samplePage)
	if err != nil {
		t.Fatalf("parseStext: %v", err)
	}
	if st.width != 612 || st.height != 792 {
		t.Fatalf("page size = %vx%v", st.width, st.height)
	}

	lines := st.lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	head := lines[0]
	if head.Text != "Introduction" {
		t.Errorf("head text = %q", head.Text)
	}
	if head.Y != 696 || head.Height != 24 || head.X0 != 72 {
		t.Errorf("head geometry = %+v", head)
	}
	if len(head.Chars) != len("Introduction") {
		t.Errorf("head chars = %d", len(head.Chars))
	}
	if head.Chars[0].Font != "Helvetica,Bold" || head.Chars[0].Size != 24 {
		t.Errorf("head char = %+v", head.Chars[0])
	}

	body := lines[1]
	if body.Text != "Body text & more" {
		t.Errorf("body text = %q", body.Text)
	}
	if body.Y != 672 {
		t.Errorf("body Y = %v", body.Y)
	}
	if len(body.Chars) != 13 || body.Chars[0].Font != "Times" {
		t.Errorf("body chars = %d %+v", len(body.Chars), body.Chars[0])
	}
}

func TestStextBlocks(t *testing.T) {
	st, err := parseStext(samplePage)
	if err != nil {
		t.Fatalf("parseStext: %v", err)
	}
	blocks := ingest.DefaultLayout().Blocks(st.lines())
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(blocks))
	}
	if !blocks[0].HasBold() || blocks[1].HasBold() {
		t.Errorf("bold detection: %v %v", blocks[0].HasBold(), blocks[1].HasBold())
	}
}

func TestFontFamilyFallbackToParentSize(t *testing.T) {
	markup := `<p style="top:10pt;left:5pt;line-height:12pt"><span style="font-family:'Open Sans',sans-serif;font-size:12pt">A<span style="font-family:Mono">B</span></span></p>`
	st, err := parseStext(markup)
	if err != nil {
		t.Fatalf("parseStext: %v", err)
	}
	if len(st.raw) != 1 || len(st.raw[0].runs) != 2 {
		t.Fatalf("raw = %+v", st.raw)
	}
	if r := st.raw[0].runs[0]; r.font != "Open Sans" || r.size != 12 {
		t.Errorf("outer run = %+v", r)
	}
	if r := st.raw[0].runs[1]; r.font != "Mono" || r.size != 12 {
		t.Errorf("inner run = %+v", r)
	}
}
