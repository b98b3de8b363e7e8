package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/ingest"
	"github.com/local/outliner/internal/outline"
)

type fakeOutliner struct {
	mu    sync.Mutex
	calls int
	got   []byte
}

func (f *fakeOutliner) Process(_ context.Context, path string) (*outline.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls++
	f.got = data
	f.mu.Unlock()

	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, &ingest.Error{Op: "detect", Path: path, Err: ingest.ErrNotPDF}
	}
	if bytes.Contains(data, []byte("corrupt")) {
		return nil, &ingest.Error{Op: "parse", Path: path, Err: os.ErrInvalid}
	}
	return &outline.Analysis{Result: outline.Result{
		Title:   "Guide",
		Outline: []outline.Entry{{Level: "H1", Text: "Einführung", Page: 0}},
	}}, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *memCache) Get(_ context.Context, hash string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[hash]
	return b, ok, nil
}

func (c *memCache) Set(_ context.Context, hash string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[hash] = data
	return nil
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{MaxUploadBytes: 1 << 10, MaxInflight: 2, RequestTimeout: time.Second}
}

func post(t *testing.T, h http.Handler, body []byte, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/outline", bytes.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestOutlineRawBodyAndCache(t *testing.T) {
	proc := &fakeOutliner{}
	c := &memCache{data: map[string][]byte{}}
	s := NewServer(Dependencies{Outliner: proc, Cache: c}, testConfig())

	rec := post(t, s, []byte("%PDF-1.7 body"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "miss" || rec.Header().Get("X-Request-ID") == "" {
		t.Errorf("headers = %v", rec.Header())
	}
	var res outline.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("body: %v", err)
	}
	if res.Title != "Guide" || len(res.Outline) != 1 || res.Outline[0].Text != "Einführung" {
		t.Errorf("result = %+v", res)
	}

	again := post(t, s, []byte("%PDF-1.7 body"), nil)
	if again.Header().Get("X-Cache") != "hit" || again.Body.String() != rec.Body.String() {
		t.Errorf("second response = %s %s", again.Header().Get("X-Cache"), again.Body)
	}
	if proc.calls != 1 {
		t.Errorf("outliner called %d times", proc.calls)
	}
}

func TestOutlineMultipart(t *testing.T) {
	proc := &fakeOutliner{}
	s := NewServer(Dependencies{Outliner: proc}, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "guide.pdf")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("%PDF-1.4 multipart"))
	mw.Close()

	rec := post(t, s, buf.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body)
	}
	if string(proc.got) != "%PDF-1.4 multipart" {
		t.Errorf("outliner saw %q", proc.got)
	}
}

func TestOutlineErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		code int
	}{
		{"empty", nil, http.StatusBadRequest},
		{"too large", bytes.Repeat([]byte("x"), 2<<10), http.StatusRequestEntityTooLarge},
		{"not a pdf", []byte("plain text"), http.StatusUnsupportedMediaType},
		{"corrupt", []byte("%PDF corrupt"), http.StatusUnprocessableEntity},
	}
	s := NewServer(Dependencies{Outliner: &fakeOutliner{}}, testConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, tt.body, nil)
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.code, rec.Body)
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body = %s", rec.Body)
			}
		})
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = "secret"
	s := NewServer(Dependencies{Outliner: &fakeOutliner{}}, cfg)

	if rec := post(t, s, []byte("%PDF"), nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", rec.Code)
	}
	if rec := post(t, s, []byte("%PDF"), map[string]string{"Authorization": "Bearer nope"}); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", rec.Code)
	}
	if rec := post(t, s, []byte("%PDF"), map[string]string{"Authorization": "Bearer secret"}); rec.Code != http.StatusOK {
		t.Errorf("good token: %d %s", rec.Code, rec.Body)
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	s := NewServer(Dependencies{Outliner: &fakeOutliner{}}, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q", got)
	}
}

type pingCache struct {
	memCache
	err error
}

func (c *pingCache) Ping(context.Context) error { return c.err }

func TestReady(t *testing.T) {
	tests := []struct {
		name  string
		cache Cache
		code  int
		msg   string
	}{
		{"no cache", nil, http.StatusOK, "disabled"},
		{"cache up", &pingCache{memCache: memCache{data: map[string][]byte{}}}, http.StatusOK, "Connected"},
		{"cache down", &pingCache{memCache: memCache{data: map[string][]byte{}}, err: os.ErrDeadlineExceeded}, http.StatusServiceUnavailable, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(Dependencies{Outliner: &fakeOutliner{}, Cache: tt.cache}, testConfig())
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if rec.Code != tt.code {
				t.Errorf("status = %d, want %d", rec.Code, tt.code)
			}
			var rd Readiness
			if err := json.Unmarshal(rec.Body.Bytes(), &rd); err != nil {
				t.Fatal(err)
			}
			if rd.Cache.Message != tt.msg || !rd.TempDir.OK {
				t.Errorf("readiness = %+v", rd)
			}
		})
	}
}
