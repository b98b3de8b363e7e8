// Package batch writes one outline JSON per PDF found in an input directory
// or S3 prefix.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/pipeline"
	"github.com/local/outliner/internal/storage"
)

const mode = "batch"

// Fetcher downloads the PDFs under an S3 location into a local directory.
type Fetcher interface {
	Fetch(ctx context.Context, loc storage.Location, dir string) ([]string, error)
}

// Publisher receives a copy of every result file.
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) error
}

type Options struct {
	// InputDir is a local directory or an s3:// URI.
	InputDir  string
	OutputDir string
	// Concurrency bounds the documents in flight; 1 processes them in order.
	Concurrency   int
	SlowThreshold time.Duration

	Fetcher   Fetcher   // required for s3:// inputs
	Publisher Publisher // optional
}

// Summary counts documents by outcome.
type Summary struct {
	Files  int
	OK     int
	Empty  int
	Failed int
	Slow   int
}

type Runner struct {
	proc pipeline.Outliner
	opts Options

	mu      sync.Mutex
	summary Summary
}

func New(proc pipeline.Outliner, opts Options) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Runner{proc: proc, opts: opts}
}

// Run processes every PDF of the input. A document that fails still gets an
// empty result file; only configuration problems and cancellation stop the
// run.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.summary = Summary{}

	files, cleanup, err := r.inputs(ctx)
	if err != nil {
		return r.summary, err
	}
	defer cleanup()

	if len(files) == 0 {
		log.Warn().Str("input", r.opts.InputDir).Msg("no pdf files found in input directory")
		return r.summary, nil
	}
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return r.summary, &config.Error{Key: "OUTPUT_DIR", Reason: err.Error()}
	}
	log.Info().Int("files", len(files)).Int("concurrency", r.opts.Concurrency).Msg("found pdf files to process")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.processOne(gctx, path)
			return nil
		})
	}
	err = g.Wait()

	s := r.summary
	log.Info().
		Int("files", s.Files).
		Int("ok", s.OK).
		Int("empty", s.Empty).
		Int("failed", s.Failed).
		Int("slow", s.Slow).
		Msg("batch complete")
	return s, err
}

// inputs lists the local PDFs to process, downloading them first for S3
// inputs. cleanup removes any download directory.
func (r *Runner) inputs(ctx context.Context) ([]string, func(), error) {
	noop := func() {}
	if !storage.IsURI(r.opts.InputDir) {
		files, err := ListPDFs(r.opts.InputDir)
		return files, noop, err
	}

	loc, err := storage.ParseURI(r.opts.InputDir)
	if err != nil {
		return nil, noop, &config.Error{Key: "INPUT_DIR", Reason: err.Error()}
	}
	if r.opts.Fetcher == nil {
		return nil, noop, &config.Error{Key: "INPUT_DIR", Reason: "s3 input needs S3 credentials"}
	}
	dir, err := os.MkdirTemp("", "outliner-input-")
	if err != nil {
		return nil, noop, fmt.Errorf("create download dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	files, err := r.opts.Fetcher.Fetch(ctx, loc, dir)
	if err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("fetch %s: %w", loc, err)
	}
	return files, cleanup, nil
}

// ListPDFs returns the files directly inside dir whose extension is .pdf in
// any case, sorted by name.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &config.Error{Key: "INPUT_DIR", Reason: err.Error()}
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// OutputName maps input.pdf to input.json.
func OutputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

func (r *Runner) processOne(ctx context.Context, path string) {
	start := time.Now()
	name := OutputName(path)

	a, err := r.proc.Process(ctx, path)
	res := outline.Empty()
	if err != nil {
		log.Error().Err(err).Str("file", filepath.Base(path)).Msg("error processing pdf")
	} else {
		res = a.Result
	}
	dur := time.Since(start)
	result := pipeline.Observe(mode, a, err, dur)

	werr := r.write(ctx, name, res)
	if werr != nil {
		log.Error().Err(werr).Str("file", filepath.Base(path)).Str("output", name).Msg("failed to write result")
		result = pipeline.ResultFailed
	}

	slow := r.opts.SlowThreshold > 0 && dur > r.opts.SlowThreshold
	r.record(result, slow)

	ev := log.Info().
		Str("file", filepath.Base(path)).
		Str("output", name).
		Int64("duration_ms", dur.Milliseconds()).
		Int("headings", len(res.Outline))
	if a != nil {
		ev = ev.Str("language", string(a.Language)).Str("doc_type", string(a.DocType))
	}
	ev.Msg("generated outline")

	if slow {
		metrics.IncSlow()
		log.Warn().
			Str("file", filepath.Base(path)).
			Dur("took", dur).
			Dur("limit", r.opts.SlowThreshold).
			Msg("processing exceeded time budget")
	}
}

func (r *Runner) write(ctx context.Context, name string, res outline.Result) error {
	data, err := res.Marshal()
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.opts.OutputDir, name), data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if r.opts.Publisher != nil {
		if err := r.opts.Publisher.Publish(ctx, name, data); err != nil {
			return fmt.Errorf("publish result: %w", err)
		}
	}
	return nil
}

func (r *Runner) record(result string, slow bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Files++
	switch result {
	case pipeline.ResultOK:
		r.summary.OK++
	case pipeline.ResultEmpty:
		r.summary.Empty++
	default:
		r.summary.Failed++
	}
	if slow {
		r.summary.Slow++
	}
}
