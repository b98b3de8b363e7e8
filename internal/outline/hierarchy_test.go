package outline

import (
	"reflect"
	"testing"
)

func levels(cs []Candidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Level
	}
	return out
}

func onePage(raw ...int) []Candidate {
	cs := make([]Candidate, len(raw))
	for i, l := range raw {
		cs[i] = Candidate{Text: "h", Page: 0, Level: l, Y: float64(1000 - 10*i)}
	}
	return cs
}

func TestEnforceHierarchy(t *testing.T) {
	tests := []struct {
		name  string
		raw   []int
		clamp bool
		want  []int
	}{
		{"jump clamped", []int{1, 3, 2}, false, []int{1, 2, 2}},
		{"steady", []int{1, 2, 3}, false, []int{1, 2, 3}},
		{"shrink and repeat", []int{2, 3, 1, 1, 2}, false, []int{2, 3, 1, 1, 2}},
		{"first unclamped", []int{3, 3}, false, []int{3, 3}},
		{"first clamped", []int{3, 3}, true, []int{2, 3}},
		{"clamp leaves shallow first alone", []int{1, 3}, true, []int{1, 2}},
		{"chain of jumps", []int{1, 3, 3, 3}, false, []int{1, 2, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := levels(EnforceHierarchy(onePage(tt.raw...), tt.clamp))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EnforceHierarchy(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEnforceHierarchyPerPageInReadingOrder(t *testing.T) {
	cands := []Candidate{
		{Text: "p1 low", Page: 1, Level: 3, Y: 100},
		{Text: "p0 low", Page: 0, Level: 3, Y: 200},
		{Text: "p1 top", Page: 1, Level: 1, Y: 700},
		{Text: "p0 top", Page: 0, Level: 1, Y: 700},
	}
	got := EnforceHierarchy(cands, false)

	var texts []string
	for _, c := range got {
		texts = append(texts, c.Text)
	}
	if want := []string{"p0 top", "p0 low", "p1 top", "p1 low"}; !reflect.DeepEqual(texts, want) {
		t.Fatalf("order = %v, want %v", texts, want)
	}
	if want := []int{1, 2, 1, 2}; !reflect.DeepEqual(levels(got), want) {
		t.Errorf("levels = %v, want %v", levels(got), want)
	}
}

func TestEnforceHierarchyNeverJumpsMoreThanOne(t *testing.T) {
	raw := []int{3, 1, 3, 2, 3, 1, 3, 3, 2}
	got := EnforceHierarchy(onePage(raw...), false)
	for i := 1; i < len(got); i++ {
		if got[i].Level > got[i-1].Level+1 {
			t.Fatalf("level jumps from %d to %d at %d", got[i-1].Level, got[i].Level, i)
		}
	}
}

func TestLevelTag(t *testing.T) {
	for level, want := range map[int]string{1: "H1", 2: "H2", 3: "H3", 0: "H3", 7: "H3"} {
		if got := LevelTag(level); got != want {
			t.Errorf("LevelTag(%d) = %q, want %q", level, got, want)
		}
	}
}
