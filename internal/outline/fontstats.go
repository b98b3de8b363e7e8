package outline

import (
	"math"
	"sort"
)

// maxHeadingSizes caps how many above-body sizes map to heading levels.
const maxHeadingSizes = 3

// FontStats is a whole-document frequency table of rounded font sizes.
type FontStats struct {
	counts map[float64]int
	order  []float64
}

func NewFontStats() *FontStats {
	return &FontStats{counts: make(map[float64]int)}
}

// BuildFontStats counts the sizes of frags in order.
func BuildFontStats(frags []Fragment) *FontStats {
	s := NewFontStats()
	for _, f := range frags {
		s.Add(f.Size)
	}
	return s
}

// RoundSize rounds a font size to one decimal, half to even.
func RoundSize(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

// Add counts one fragment of the given size. Size is expected to be rounded.
func (s *FontStats) Add(size float64) {
	if _, ok := s.counts[size]; !ok {
		s.order = append(s.order, size)
	}
	s.counts[size]++
}

func (s *FontStats) Count(size float64) int { return s.counts[size] }

func (s *FontStats) Len() int { return len(s.order) }

// BodySize is the most frequent size. Ties go to the size seen first.
// Returns 0 for an empty table.
func (s *FontStats) BodySize() float64 {
	var body float64
	best := 0
	for _, size := range s.order {
		if c := s.counts[size]; c > best {
			body, best = size, c
		}
	}
	return body
}

// Hierarchy maps the largest above-body sizes to levels 1..3.
func (s *FontStats) Hierarchy() Hierarchy {
	body := s.BodySize()
	var sizes []float64
	for _, size := range s.order {
		if size > body {
			sizes = append(sizes, size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	if len(sizes) > maxHeadingSizes {
		sizes = sizes[:maxHeadingSizes]
	}
	return Hierarchy{sizes: sizes}
}

// Hierarchy is the fixed size-to-level mapping of one document.
type Hierarchy struct {
	sizes []float64 // descending
}

// Level returns the heading level for an exact rounded size.
func (h Hierarchy) Level(size float64) (int, bool) {
	for i, s := range h.sizes {
		if s == size {
			return i + 1, true
		}
	}
	return 0, false
}

// Sizes returns the mapped sizes, largest first.
func (h Hierarchy) Sizes() []float64 {
	return append([]float64(nil), h.sizes...)
}
