package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
	"github.com/leth4/leto-sub000/internal/watch"
)

// ─────────────────────────────────────────────────────────────
// Board Service — open boards, journal and external changes
// ─────────────────────────────────────────────────────────────

var (
	ErrBoardNotOpen    = errors.New("board is not open")
	ErrJournalDisabled = errors.New("revision journal is disabled")
)

// BoardOptions carries the collaborators and limits every opened engine gets.
type BoardOptions struct {
	Store   domain.DocumentStore
	Preview domain.PreviewRenderer
	Spell   domain.Spellchecker

	UIOffset         geometry.Vec
	FontSize         float64
	HistoryLimit     int
	MaxWriteAttempts int
}

// localPather is implemented by stores backed by the local file system.
type localPather interface {
	LocalPath(path string) string
}

// BoardService owns the open boards. Engine methods are not safe for
// concurrent use, so every call goes through Do, which holds the board's
// mutex.
type BoardService struct {
	opts    BoardOptions
	emitter EventEmitter
	journal *Journal
	watcher *watch.Watcher

	mu     sync.Mutex
	boards map[string]*openBoard
	byFile map[string]string // local file -> board path
}

type openBoard struct {
	mu     sync.Mutex
	engine *board.Engine
}

// NewBoardService creates a BoardService. journal may be nil.
func NewBoardService(opts BoardOptions, emitter EventEmitter, journal *Journal) *BoardService {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &BoardService{
		opts:    opts,
		emitter: emitter,
		journal: journal,
		boards:  make(map[string]*openBoard),
		byFile:  make(map[string]string),
	}
}

// Journal returns the revision journal, or nil.
func (s *BoardService) Journal() *Journal { return s.journal }

// WatchExternalChanges starts reporting boards modified on disk by someone
// else as board:external-change events. Only stores backed by local files
// can be watched.
func (s *BoardService) WatchExternalChanges() error {
	if _, ok := s.opts.Store.(localPather); !ok {
		return fmt.Errorf("store %T has no local files to watch", s.opts.Store)
	}
	w, err := watch.New(s.onExternalChange)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.watcher = w
	open := make([]string, 0, len(s.boards))
	for p := range s.boards {
		open = append(open, p)
	}
	s.mu.Unlock()

	for _, p := range open {
		s.watchBoard(p)
	}
	return nil
}

func (s *BoardService) onExternalChange(file string) {
	s.mu.Lock()
	path, ok := s.byFile[file]
	s.mu.Unlock()
	if ok {
		s.emitter.Emit(context.Background(), board.EventExternalChange, path)
	}
}

func (s *BoardService) watchBoard(path string) {
	s.mu.Lock()
	w := s.watcher
	ob := s.boards[path]
	s.mu.Unlock()
	lp, ok := s.opts.Store.(localPather)
	if w == nil || ob == nil || !ok {
		return
	}
	file := lp.LocalPath(path)
	if err := w.Watch(file, ob.engine.Saver().LastWritten); err != nil {
		log.Printf("board service: watch %s: %v", path, err)
		return
	}
	s.mu.Lock()
	s.byFile[file] = path
	s.mu.Unlock()
}

// ── Lifecycle ──────────────────────────────────────────────

// Open loads the board at path, or returns the already open one's state.
func (s *BoardService) Open(ctx context.Context, path string) (domain.BoardState, error) {
	path = filepath.Clean(path)

	s.mu.Lock()
	if ob, ok := s.boards[path]; ok {
		s.mu.Unlock()
		ob.mu.Lock()
		defer ob.mu.Unlock()
		return ob.engine.State(), nil
	}
	s.mu.Unlock()

	e := board.New(board.Options{
		Path:             path,
		Store:            s.opts.Store,
		Preview:          s.opts.Preview,
		Spell:            s.opts.Spell,
		Emitter:          s.emitter,
		UIOffset:         s.opts.UIOffset,
		FontSize:         s.opts.FontSize,
		HistoryLimit:     s.opts.HistoryLimit,
		MaxWriteAttempts: s.opts.MaxWriteAttempts,
		OnSaved:          func(doc string) { s.recordRevision(path, doc) },
	})
	if err := e.Load(ctx); err != nil {
		return domain.BoardState{}, err
	}

	s.mu.Lock()
	if ob, ok := s.boards[path]; ok {
		// Lost a race with another Open of the same path.
		s.mu.Unlock()
		ob.mu.Lock()
		defer ob.mu.Unlock()
		return ob.engine.State(), nil
	}
	s.boards[path] = &openBoard{engine: e}
	s.mu.Unlock()

	s.watchBoard(path)
	return e.State(), nil
}

// Do runs fn with exclusive access to the open board at path.
func (s *BoardService) Do(path string, fn func(e *board.Engine) error) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	ob, ok := s.boards[path]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrBoardNotOpen)
	}
	ob.mu.Lock()
	defer ob.mu.Unlock()
	return fn(ob.engine)
}

// Boards lists open board paths in order.
func (s *BoardService) Boards() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.boards))
	for p := range s.boards {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close flushes pending saves of the board and forgets it.
func (s *BoardService) Close(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	s.mu.Lock()
	ob, ok := s.boards[path]
	if ok {
		delete(s.boards, path)
		for f, p := range s.byFile {
			if p == path {
				delete(s.byFile, f)
				if s.watcher != nil {
					s.watcher.Unwatch(f)
				}
			}
		}
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrBoardNotOpen)
	}
	if err := ob.engine.Flush(ctx); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Shutdown closes every board, stops the watcher and the journal schedule.
func (s *BoardService) Shutdown(ctx context.Context) error {
	var errs []error
	for _, p := range s.Boards() {
		if err := s.Close(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.journal != nil {
		if err := s.journal.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ── Journal ────────────────────────────────────────────────

// recordRevision runs on the board's saver goroutine.
func (s *BoardService) recordRevision(path, doc string) {
	if s.journal == nil {
		return
	}
	if _, _, err := s.journal.Record(path, doc); err != nil {
		log.Printf("board service: %v", err)
	}
}

// Revisions lists the journal entries of path, newest first. Documents are
// not included.
func (s *BoardService) Revisions(path string, limit int) ([]domain.Revision, error) {
	if s.journal == nil {
		return nil, ErrJournalDisabled
	}
	return s.journal.Revisions(filepath.Clean(path), limit)
}

// RestoreRevision replaces the open board's cards and arrows with those of a
// journaled revision. The restore is one undoable change.
func (s *BoardService) RestoreRevision(path, id string) error {
	if s.journal == nil {
		return ErrJournalDisabled
	}
	path = filepath.Clean(path)
	rev, err := s.journal.Revision(id)
	if err != nil {
		return err
	}
	if rev.BoardPath != path {
		return fmt.Errorf("revision %s belongs to %s, not %s", id, rev.BoardPath, path)
	}
	st, err := board.Decode(rev.Document, s.opts.FontSize)
	if err != nil {
		return fmt.Errorf("revision %s: %w", id, err)
	}
	return s.Do(path, func(e *board.Engine) error {
		e.Restore(st)
		return nil
	})
}
