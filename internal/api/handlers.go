package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/outliner/internal/cache"
	"github.com/local/outliner/internal/ingest"
	"github.com/local/outliner/internal/metrics"
	"github.com/local/outliner/internal/pipeline"
)

const mode = "api"

var (
	errEmptyUpload = errors.New("empty upload")
	errTooLarge    = errors.New("upload too large")
	errBusy        = errors.New("server busy")
)

// handleOutline accepts a PDF as the raw request body or as the "file" part
// of a multipart form and answers with its outline JSON.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20) // form overhead

	data, name, err := s.readUpload(r)
	if err != nil {
		switch {
		case errors.Is(err, errTooLarge):
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		default:
			jsonError(w, err.Error(), http.StatusBadRequest)
		}
		return
	}

	hash := cache.Hash(data)
	w.Header().Set("X-Content-Hash", hash)

	if b, ok := s.cached(r.Context(), hash); ok {
		writeResult(w, b, "hit")
		return
	}

	v, err, shared := s.group.Do(hash, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.timeout())
		defer cancel()
		return s.outline(ctx, hash, name, data)
	})
	if err != nil {
		log.Error().Err(err).Str("request_id", requestIDFrom(r.Context())).Str("file", name).Msg("outline failed")
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	state := "miss"
	if shared {
		state = "shared"
	}
	writeResult(w, v.([]byte), state)
}

func (s *Server) timeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return time.Minute
}

func (s *Server) readUpload(r *http.Request) ([]byte, string, error) {
	var (
		src  io.Reader = r.Body
		name           = "upload.pdf"
	)
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, "", errTooLarge
			}
			return nil, "", fmt.Errorf("invalid multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()
		file, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()
		src, name = file, hdr.Filename
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", errTooLarge
		}
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, "", errTooLarge
	}
	if len(data) == 0 {
		return nil, "", errEmptyUpload
	}
	return data, name, nil
}

func (s *Server) cached(ctx context.Context, hash string) ([]byte, bool) {
	if s.deps.Cache == nil {
		return nil, false
	}
	b, ok, err := s.deps.Cache.Get(ctx, hash)
	switch {
	case err != nil:
		metrics.IncCache("error")
		log.Warn().Err(err).Str("hash", hash).Msg("cache lookup failed")
		return nil, false
	case !ok:
		metrics.IncCache("miss")
		return nil, false
	}
	metrics.IncCache("hit")
	return b, true
}

// outline stores data in a temporary file, runs the pipeline on it and
// caches the encoded result.
func (s *Server) outline(ctx context.Context, hash, name string, data []byte) ([]byte, error) {
	release, err := s.slots.Acquire(ctx)
	if err != nil {
		return nil, errBusy
	}
	defer release()

	f, err := os.CreateTemp("", "outliner-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(data); err != nil {
		f.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}

	start := time.Now()
	a, err := s.deps.Outliner.Process(ctx, f.Name())
	dur := time.Since(start)
	pipeline.Observe(mode, a, err, dur)
	if err != nil {
		return nil, err
	}
	b, err := a.Result.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	log.Info().
		Str("file", name).
		Str("hash", hash).
		Str("language", string(a.Language)).
		Str("doc_type", string(a.DocType)).
		Int("headings", len(a.Result.Outline)).
		Int64("duration_ms", dur.Milliseconds()).
		Msg("generated outline")

	if s.deps.Cache != nil {
		if err := s.deps.Cache.Set(ctx, hash, b); err != nil {
			log.Warn().Err(err).Str("hash", hash).Msg("cache store failed")
		}
	}
	return b, nil
}

func statusFor(err error) int {
	var ierr *ingest.Error
	switch {
	case errors.Is(err, errBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, ingest.ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &ierr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeResult(w http.ResponseWriter, b []byte, cacheState string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Cache", cacheState)
	w.Write(b)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
