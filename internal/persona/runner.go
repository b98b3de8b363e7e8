package persona

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/config"
)

// pdfDir is where the documents named in the input live, relative to the
// input directory.
const pdfDir = "PDFs"

const timestampLayout = "2006-01-02T15:04:05.000000"

type Options struct {
	InputDir   string
	ConfigFile string // relative to InputDir unless absolute
	OutputFile string
	Now        func() time.Time
}

type Runner struct {
	analyzer Analyzer
	opts     Options
}

func NewRunner(a Analyzer, opts Options) *Runner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{analyzer: a, opts: opts}
}

// Run reads the input file, analyzes the documents it names and writes the
// output file. A missing or unreadable input file and an input whose
// documents are all missing are configuration errors. An analysis failure
// is written to the output file as metadata.error and is not returned.
func (r *Runner) Run(ctx context.Context) (*Output, error) {
	cfgPath := r.opts.ConfigFile
	if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(r.opts.InputDir, cfgPath)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		return nil, &config.Error{Key: "PERSONA_CONFIG", Reason: cfgPath + " not found"}
	}
	in, err := LoadInput(cfgPath)
	if err != nil {
		return nil, &config.Error{Key: "PERSONA_CONFIG", Reason: err.Error()}
	}

	docs := r.resolve(in.Documents)
	if len(docs) == 0 {
		return nil, &config.Error{Key: "documents", Reason: "no valid PDFs to process"}
	}

	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	logger.Info().
		Int("documents", len(docs)).
		Str("persona", in.Persona).
		Str("job", in.JobToBeDone).
		Msg("starting persona analysis")

	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	meta := Metadata{
		InputDocuments:      names,
		Persona:             in.Persona,
		JobToBeDone:         in.JobToBeDone,
		ProcessingTimestamp: r.opts.Now().Format(timestampLayout),
	}

	out, err := r.analyzer.Analyze(ctx, docs, in.Persona, in.JobToBeDone)
	if err != nil {
		logger.Error().Err(err).Msg("analysis failed")
		meta.Error = err.Error()
		out = &Output{}
	}
	out.Metadata = meta

	if err := out.Write(r.opts.OutputFile); err != nil {
		return out, err
	}
	logger.Info().
		Str("output", r.opts.OutputFile).
		Int("sections", len(out.ExtractedSections)).
		Msg("analysis complete")
	return out, nil
}

func (r *Runner) resolve(names []string) []Document {
	var docs []Document
	for _, name := range names {
		path := filepath.Join(r.opts.InputDir, pdfDir, name)
		if st, err := os.Stat(path); err != nil || st.IsDir() {
			log.Warn().Str("file", name).Msg("file not found")
			continue
		}
		docs = append(docs, Document{Name: name, Path: path})
	}
	return docs
}
