// Command outliner extracts titles and heading outlines from PDFs.
//
// Usage:
//
//	outliner [batch]   process every PDF of INPUT_DIR into OUTPUT_DIR
//	outliner persona   rank sections for the persona input file
//	outliner serve     run the HTTP service
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/api"
	"github.com/local/outliner/internal/batch"
	"github.com/local/outliner/internal/cache"
	cfgpkg "github.com/local/outliner/internal/config"
	"github.com/local/outliner/internal/ingest"
	logpkg "github.com/local/outliner/internal/logger"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/outline"
	"github.com/local/outliner/internal/persona"
	"github.com/local/outliner/internal/pipeline"
	"github.com/local/outliner/internal/storage"
)

func main() {
	cmd := "batch"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := cfgpkg.LoadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg := cfgpkg.FromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	_ = logpkg.Init(logpkg.FromConfig(cfg))
	defer logpkg.Close()
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proc, err := newProcessor(cfg)
	if err == nil {
		switch cmd {
		case "batch":
			err = runBatch(ctx, cfg, proc)
		case "persona":
			err = runPersona(ctx, cfg, proc)
		case "serve":
			err = serve(ctx, cfg, proc)
		default:
			err = fmt.Errorf("unknown command %q (want batch, persona or serve)", cmd)
		}
	}
	if err != nil {
		var cerr *cfgpkg.Error
		if errors.As(err, &cerr) {
			log.Error().Err(err).Str("key", cerr.Key).Msg("invalid configuration")
		} else {
			log.Error().Err(err).Str("command", cmd).Msg("run failed")
		}
		logpkg.Close()
		os.Exit(1)
	}
}

func newProcessor(cfg cfgpkg.Config) (*pipeline.Processor, error) {
	policy := outline.DefaultPolicy()
	if cfg.PolicyFile != "" {
		p, err := outline.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, &cfgpkg.Error{Key: "OUTLINE_POLICY_FILE", Reason: err.Error()}
		}
		policy = p
	}
	src, err := pipeline.SourceFor(cfg.Ingest.Backend)
	if err != nil {
		return nil, &cfgpkg.Error{Key: "PDF_BACKEND", Reason: err.Error()}
	}
	log.Info().
		Str("backend", cfg.Ingest.Backend).
		Str("version", outline.Version).
		Bool("classifier", policy.ClassifyDocuments).
		Msg("outline engine ready")
	return pipeline.New(pipeline.Options{
		Source:    src,
		Engine:    outline.New(policy),
		Preflight: cfg.Ingest.Preflight,
		MinChars:  ingest.DefaultMinChars,
	}), nil
}

func runBatch(ctx context.Context, cfg cfgpkg.Config, proc pipeline.Outliner) error {
	opts := batch.Options{
		InputDir:      cfg.Batch.InputDir,
		OutputDir:     cfg.Batch.OutputDir,
		Concurrency:   cfg.Batch.Concurrency,
		SlowThreshold: cfg.Batch.SlowThreshold,
	}
	if storage.IsURI(cfg.Batch.InputDir) || cfg.S3.OutputURI != "" {
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return err
		}
		opts.Fetcher = client
		if cfg.S3.OutputURI != "" {
			loc, err := storage.ParseURI(cfg.S3.OutputURI)
			if err != nil {
				return &cfgpkg.Error{Key: "S3_OUTPUT_URI", Reason: err.Error()}
			}
			opts.Publisher = client.Publisher(loc)
		}
	}

	start := time.Now()
	sum, err := batch.New(proc, opts).Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("files", sum.Files).
		Int("ok", sum.OK).
		Int("empty", sum.Empty).
		Int("failed", sum.Failed).
		Int("slow", sum.Slow).
		Dur("elapsed", time.Since(start)).
		Msg("batch complete")
	return nil
}

func runPersona(ctx context.Context, cfg cfgpkg.Config, proc pipeline.Outliner) error {
	r := persona.NewRunner(persona.NewOutlineAnalyzer(proc), persona.Options{
		InputDir:   cfg.Persona.InputDir,
		ConfigFile: cfg.Persona.ConfigFile,
		OutputFile: cfg.Persona.OutputFile,
	})
	out, err := r.Run(ctx)
	if err != nil {
		return err
	}
	log.Info().
		Int("sections", len(out.ExtractedSections)).
		Str("output", cfg.Persona.OutputFile).
		Msg("persona analysis complete")
	return nil
}

func serve(ctx context.Context, cfg cfgpkg.Config, proc pipeline.Outliner) error {
	deps := api.Dependencies{Outliner: proc}
	if cfg.Cache.RedisURL != "" {
		rs, err := cache.NewResultStore(cfg.Cache.RedisURL, outline.Version, cfg.Cache.TTL)
		if err != nil {
			return &cfgpkg.Error{Key: "REDIS_URL", Reason: err.Error()}
		}
		defer rs.Close()
		deps.Cache = cache.NewBreaker(rs, 5*time.Second, 5*time.Minute)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewServer(deps, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Msgf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("shutdown complete")
	return nil
}
