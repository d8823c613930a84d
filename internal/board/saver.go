package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/leth4/leto-sub000/internal/domain"
)

// ErrVerifyMismatch reports that a document read back after writing differed
// from what was written.
var ErrVerifyMismatch = errors.New("document read back differs from written content")

// ─────────────────────────────────────────────────────────────
// Saver — single writer with one trailing save
// ─────────────────────────────────────────────────────────────

// SaverOptions configures a Saver.
type SaverOptions struct {
	Store domain.DocumentStore
	Path  string
	// MaxAttempts bounds the write-verify loop. Zero retries forever.
	MaxAttempts int
	OnSaved     func(doc string)
	Emit        func(event string, data any)
}

// Saver writes documents one at a time. While a write is in flight, new
// requests replace a single pending document, so a burst of requests results
// in exactly one trailing save carrying the latest state.
type Saver struct {
	opts SaverOptions

	mu      sync.Mutex
	busy    bool
	pending *string
	idle    chan struct{}
	lastErr error
	written string
}

func NewSaver(opts SaverOptions) *Saver {
	idle := make(chan struct{})
	close(idle)
	return &Saver{opts: opts, idle: idle}
}

// Request schedules doc to be written. It never blocks on I/O.
func (s *Saver) Request(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		s.pending = &doc
		return
	}
	s.busy = true
	s.idle = make(chan struct{})
	go s.run(doc)
}

func (s *Saver) run(doc string) {
	for {
		err := s.write(doc)

		s.mu.Lock()
		s.lastErr = err
		if err == nil {
			s.written = doc
		}
		s.mu.Unlock()

		s.report(doc, err)

		s.mu.Lock()
		if s.pending != nil {
			doc = *s.pending
			s.pending = nil
			s.mu.Unlock()
			continue
		}
		s.busy = false
		close(s.idle)
		s.mu.Unlock()
		return
	}
}

// write stores doc, reads it back and rewrites until both match.
func (s *Saver) write(doc string) error {
	for attempt := 1; ; attempt++ {
		err := s.opts.Store.WriteText(s.opts.Path, doc)
		if err == nil {
			var got string
			got, err = s.opts.Store.ReadText(s.opts.Path)
			if err == nil && got == doc {
				return nil
			}
			if err == nil {
				err = ErrVerifyMismatch
			}
		}
		if s.opts.MaxAttempts > 0 && attempt >= s.opts.MaxAttempts {
			return fmt.Errorf("save %s after %d attempts: %w", s.opts.Path, attempt, err)
		}
		log.Printf("board saver: attempt %d for %s: %v", attempt, s.opts.Path, err)
	}
}

func (s *Saver) report(doc string, err error) {
	if err != nil {
		log.Printf("board saver: %v", err)
		if s.opts.Emit != nil {
			s.opts.Emit(EventSaveFailed, err.Error())
		}
		return
	}
	if s.opts.OnSaved != nil {
		s.opts.OnSaved(doc)
	}
	if s.opts.Emit != nil {
		s.opts.Emit(EventSaved, s.opts.Path)
	}
}

// Flush blocks until no save is in flight or pending, or ctx is done. It
// returns the error of the last completed save.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Busy reports whether a save is in flight.
func (s *Saver) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Remember records doc as the content known to be on disk, e.g. after a load.
func (s *Saver) Remember(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = doc
}

// LastWritten returns the last document known to be on disk.
func (s *Saver) LastWritten() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}
