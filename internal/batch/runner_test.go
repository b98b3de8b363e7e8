package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/storage"
)

type fakeOutliner struct {
	mu    sync.Mutex
	seen  []string
	delay time.Duration
}

func (f *fakeOutliner) Process(_ context.Context, path string) (*outline.Analysis, error) {
	f.mu.Lock()
	f.seen = append(f.seen, filepath.Base(path))
	f.mu.Unlock()
	time.Sleep(f.delay)

	switch filepath.Base(path) {
	case "broken.pdf":
		return nil, errors.New("corrupt xref table")
	case "blank.pdf":
		return &outline.Analysis{Result: outline.Empty()}, nil
	}
	return &outline.Analysis{
		Language: outline.English,
		DocType:  outline.Standard,
		Result: outline.Result{
			Title:   "Report " + filepath.Base(path),
			Outline: []outline.Entry{{Level: "H1", Text: "Überblick", Page: 0}},
		},
	}, nil
}

type memPublisher struct {
	mu   sync.Mutex
	docs map[string]string
}

func (p *memPublisher) Publish(_ context.Context, name string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[name] = string(data)
	return nil
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRun(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	touch(t, in, "a.pdf", "B.PDF", "broken.pdf", "blank.pdf", "notes.txt")
	if err := os.Mkdir(filepath.Join(in, "nested.pdf"), 0o755); err != nil {
		t.Fatal(err)
	}

	proc := &fakeOutliner{}
	pub := &memPublisher{docs: map[string]string{}}
	r := New(proc, Options{InputDir: in, OutputDir: out, Concurrency: 2, Publisher: pub})
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum != (Summary{Files: 4, OK: 2, Empty: 1, Failed: 1}) {
		t.Errorf("summary = %+v", sum)
	}

	sort.Strings(proc.seen)
	if want := []string{"B.PDF", "a.pdf", "blank.pdf", "broken.pdf"}; strings.Join(proc.seen, ",") != strings.Join(want, ",") {
		t.Errorf("processed = %v, want %v", proc.seen, want)
	}

	got, err := os.ReadFile(filepath.Join(out, "a.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(got), `"text": "Überblick"`) || !strings.Contains(string(got), `"title": "Report a.pdf"`) {
		t.Errorf("a.json = %s", got)
	}

	failed, err := os.ReadFile(filepath.Join(out, "broken.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "{\n  \"title\": \"\",\n  \"outline\": []\n}\n"; string(failed) != want {
		t.Errorf("broken.json = %q", failed)
	}
	if _, err := os.Stat(filepath.Join(out, "B.json")); err != nil {
		t.Errorf("B.json missing: %v", err)
	}
	if len(pub.docs) != 4 || pub.docs["a.json"] != string(got) {
		t.Errorf("published = %d docs", len(pub.docs))
	}
}

func TestRunMissingInputIsConfigError(t *testing.T) {
	r := New(&fakeOutliner{}, Options{InputDir: filepath.Join(t.TempDir(), "missing"), OutputDir: t.TempDir()})
	_, err := r.Run(context.Background())
	var cerr *config.Error
	if !errors.As(err, &cerr) || cerr.Key != "INPUT_DIR" {
		t.Fatalf("err = %v, want INPUT_DIR config error", err)
	}
}

func TestRunEmptyInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	sum, err := New(&fakeOutliner{}, Options{InputDir: t.TempDir(), OutputDir: out}).Run(context.Background())
	if err != nil || sum.Files != 0 {
		t.Fatalf("Run = %+v, %v", sum, err)
	}
}

func TestRunCountsSlowDocuments(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a.pdf")
	r := New(&fakeOutliner{delay: 5 * time.Millisecond}, Options{InputDir: in, OutputDir: t.TempDir(), SlowThreshold: time.Nanosecond})
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Slow != 1 || sum.OK != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

type dirFetcher struct{ names []string }

func (f dirFetcher) Fetch(_ context.Context, loc storage.Location, dir string) ([]string, error) {
	var out []string
	for _, n := range f.names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("%PDF"), 0o644); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func TestRunS3Input(t *testing.T) {
	out := t.TempDir()
	r := New(&fakeOutliner{}, Options{InputDir: "s3://docs/in", OutputDir: out, Fetcher: dirFetcher{names: []string{"remote.pdf"}}})
	sum, err := r.Run(context.Background())
	if err != nil || sum.OK != 1 {
		t.Fatalf("Run = %+v, %v", sum, err)
	}
	if _, err := os.Stat(filepath.Join(out, "remote.json")); err != nil {
		t.Errorf("remote.json missing: %v", err)
	}

	_, err = New(&fakeOutliner{}, Options{InputDir: "s3://docs/in", OutputDir: out}).Run(context.Background())
	var cerr *config.Error
	if !errors.As(err, &cerr) {
		t.Errorf("s3 input without fetcher: err = %v", err)
	}
}

func TestOutputName(t *testing.T) {
	for in, want := range map[string]string{
		"/in/file01.pdf":   "file01.json",
		"REPORT.PDF":       "REPORT.json",
		"a.b.pdf":          "a.b.json",
		"/x/日本語資料.pdf": "日本語資料.json",
	} {
		if got := OutputName(in); got != want {
			t.Errorf("OutputName(%q) = %q, want %q", in, got, want)
		}
	}
}
