package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/config"
	"github.com/leth4/leto-sub000/internal/preview"
	"github.com/leth4/leto-sub000/internal/service"
	"github.com/leth4/leto-sub000/internal/spellcheck"
	"github.com/leth4/leto-sub000/internal/storage"
)

// App wires storage, the revision journal and the board service together.
type App struct {
	ctx context.Context
	cfg config.Config

	files   *storage.FileStore
	db      *storage.DB
	journal *service.Journal
	spell   *spellcheck.Checker
	boards  *service.BoardService
}

// New creates a new App.
func New(cfg config.Config) *App {
	return &App{cfg: cfg}
}

// Startup opens the journal database and creates the board service.
func (a *App) Startup(ctx context.Context) error {
	a.ctx = ctx
	a.files = storage.NewFileStore(a.cfg.Root)

	if a.cfg.Journal.Enabled {
		db, err := openJournal(a.cfg.Journal)
		if err != nil {
			return err
		}
		a.db = db
		a.journal = service.NewJournal(storage.NewRevisionStore(db), a.cfg.Journal.Keep)
		if err := a.journal.StartPruning(a.cfg.Journal.PruneSchedule); err != nil {
			db.Close()
			return err
		}
	}

	a.spell = spellcheck.New(a.cfg.Spellcheck.Dictionary, a.cfg.Spellcheck.UserWords)
	a.spell.SetActive(a.cfg.Spellcheck.Enabled)

	a.boards = service.NewBoardService(service.BoardOptions{
		Store:            a.files,
		Preview:          preview.New(),
		Spell:            a.spell,
		UIOffset:         a.cfg.UI.Offset,
		FontSize:         a.cfg.Board.FontSize,
		HistoryLimit:     a.cfg.History.Limit,
		MaxWriteAttempts: a.cfg.Save.MaxAttempts,
	}, a, a.journal)
	return nil
}

// Shutdown flushes every open board and closes the journal database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.boards != nil {
		if err := a.boards.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Boards returns the board service. Startup must have run.
func (a *App) Boards() *service.BoardService { return a.boards }

// Emit implements service.EventEmitter. Boards changed on disk by another
// program are reloaded; failures are logged.
func (a *App) Emit(ctx context.Context, event string, data any) {
	switch event {
	case board.EventExternalChange:
		path, _ := data.(string)
		log.Printf("app: %s changed on disk, reloading", path)
		if err := a.boards.Do(path, func(e *board.Engine) error { return e.Load(a.ctx) }); err != nil {
			log.Printf("app: reload %s: %v", path, err)
		}
	case board.EventSaveFailed:
		log.Printf("app: save failed: %v", data)
	}
}

// openJournal opens the journal database described by cfg.
func openJournal(cfg config.JournalConfig) (*storage.DB, error) {
	dsn, err := journalDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return db, nil
}

// journalDSN prefers an explicit DSN, then the sqlite path, then the
// connection fields.
func journalDSN(cfg config.JournalConfig) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Driver == "" || cfg.Driver == storage.DriverSQLite {
		if cfg.Path == "" {
			return "", fmt.Errorf("journal: sqlite needs a path or dsn")
		}
		return filepath.Clean(cfg.Path), nil
	}
	return storage.BuildDSN(cfg.Driver, storage.ConnParams{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		SSLMode:  cfg.SSLMode,
	})
}
