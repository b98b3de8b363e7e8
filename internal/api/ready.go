package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"
)

// Pinger is implemented by caches that can report their connection health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Readiness bundles the subsystem statuses reported by /ready.
type Readiness struct {
	Cache   Status `json:"cache"`
	TempDir Status `json:"temp_dir"`
	Slots   Status `json:"slots"`
}

func (r Readiness) ok() bool {
	return r.Cache.OK && r.TempDir.OK
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	rd := Readiness{
		Cache:   s.checkCache(r.Context()),
		TempDir: checkTempDir(),
		Slots:   s.checkSlots(),
	}
	code := http.StatusOK
	if !rd.ok() {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(rd)
}

func (s *Server) checkCache(ctx context.Context) Status {
	if s.deps.Cache == nil {
		return Status{OK: true, Message: "disabled"}
	}
	p, ok := s.deps.Cache.(Pinger)
	if !ok {
		return Status{OK: true, Message: "enabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func checkTempDir() Status {
	f, err := os.CreateTemp("", "outliner-ready-*")
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	f.Close()
	os.Remove(f.Name())
	return Status{OK: true, Message: "Writable"}
}

// checkSlots is informational; a saturated server is still ready.
func (s *Server) checkSlots() Status {
	if s.slots.InFlight() >= s.slots.Cap() {
		return Status{OK: true, Message: "saturated"}
	}
	return Status{OK: true, Message: "Available"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
