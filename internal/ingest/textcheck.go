package ingest

import "sort"

// DefaultMinChars is used when a non-positive threshold is passed in.
const DefaultMinChars = 20

// PageProbe is the character count of one sampled page.
type PageProbe struct {
	PageIndex int `json:"page_index"`
	CharCount int `json:"char_count"`
}

// Diagnostics describes the text-extractability check of one document.
type Diagnostics struct {
	FilePath           string      `json:"file_path"`
	TotalPages         int         `json:"total_pages"`
	SampledPages       []int       `json:"sampled_pages"`
	TotalCharsInSample int         `json:"total_chars_in_sample"`
	Threshold          int         `json:"threshold"`
	Probes             []PageProbe `json:"probes"`
	HasExtractableText bool        `json:"has_extractable_text"`
}

// CheckText samples pages of doc and counts the characters that carry font
// data. Raster-only (scanned) files come back with HasExtractableText false.
// If threshold <= 0, DefaultMinChars is used.
func CheckText(doc *Document, threshold int) *Diagnostics {
	if threshold <= 0 {
		threshold = DefaultMinChars
	}
	diag := &Diagnostics{Threshold: threshold, SampledPages: []int{}}
	if doc == nil {
		return diag
	}
	diag.FilePath = doc.Path
	diag.TotalPages = len(doc.Pages)

	diag.SampledPages = sampleIndices(diag.TotalPages)
	for _, idx := range diag.SampledPages {
		n := 0
		for _, c := range doc.Pages[idx].Containers {
			n += len(c.Chars)
		}
		diag.Probes = append(diag.Probes, PageProbe{PageIndex: idx, CharCount: n})
		diag.TotalCharsInSample += n
		if diag.TotalCharsInSample >= threshold {
			break
		}
	}
	diag.HasExtractableText = diag.TotalCharsInSample >= threshold
	return diag
}

// sampleIndices picks every page of short documents and otherwise the
// first, quarter, middle, three-quarter and last pages.
func sampleIndices(total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 5 {
		idx := make([]int, total)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	set := map[int]struct{}{}
	for _, i := range []int{0, total / 4, total / 2, 3 * total / 4, total - 1} {
		set[i] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
