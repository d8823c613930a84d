package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/leth4/leto-sub000/internal/board"
	"github.com/leth4/leto-sub000/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Journal — verified saves kept as revisions
// ─────────────────────────────────────────────────────────────

// DefaultKeep is the number of revisions kept per board.
const DefaultKeep = 40

// Journal records every verified save of a board in a RevisionStore and keeps
// the newest revisions per board.
type Journal struct {
	store domain.RevisionStore
	keep  int
	jobs  jobGuard

	mu        sync.Mutex
	cronSched *cron.Cron
}

// NewJournal creates a Journal. keep <= 0 uses DefaultKeep.
func NewJournal(store domain.RevisionStore, keep int) *Journal {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Journal{store: store, keep: keep}
}

// Checksum is the hex sha256 of a document.
func Checksum(doc string) string {
	sum := sha256.Sum256([]byte(doc))
	return hex.EncodeToString(sum[:])
}

// Record stores doc as the newest revision of path. A document identical to
// the newest revision is not stored again; the returned bool reports whether
// a revision was added.
func (j *Journal) Record(path, doc string) (*domain.Revision, bool, error) {
	sum := Checksum(doc)
	latest, err := j.store.LatestChecksum(path)
	if err != nil {
		return nil, false, fmt.Errorf("journal %s: %w", path, err)
	}
	if latest == sum {
		return nil, false, nil
	}

	count := 0
	if st, err := board.Decode(doc, 0); err == nil {
		count = len(st.Cards)
	}
	rev := &domain.Revision{
		BoardPath: path,
		Checksum:  sum,
		Document:  doc,
		CardCount: count,
	}
	if err := j.store.AppendRevision(rev); err != nil {
		return nil, false, fmt.Errorf("journal %s: %w", path, err)
	}
	if _, err := j.Prune(path); err != nil {
		log.Printf("board journal: prune %s: %v", path, err)
	}
	return rev, true, nil
}

// Revisions lists revisions of path, newest first, without documents.
func (j *Journal) Revisions(path string, limit int) ([]domain.Revision, error) {
	return j.store.ListRevisions(path, limit)
}

// Revision returns one revision including its document.
func (j *Journal) Revision(id string) (*domain.Revision, error) {
	return j.store.GetRevision(id)
}

// Prune drops all but the newest revisions of path. If a prune of path is
// already running it returns immediately.
func (j *Journal) Prune(path string) (int, error) {
	if !j.jobs.TryLock(path) {
		return 0, nil
	}
	defer j.jobs.Unlock(path)
	return j.store.PruneRevisions(path, j.keep)
}

// PruneAll prunes every board that has revisions.
func (j *Journal) PruneAll(ctx context.Context) (int, error) {
	paths, err := j.store.JournaledBoards()
	if err != nil {
		return 0, fmt.Errorf("list journaled boards: %w", err)
	}
	total := 0
	var errs []error
	for _, p := range paths {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := j.Prune(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune %s: %w", p, err))
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

// StartPruning runs PruneAll on a cron schedule such as "@every 10m".
// Calling it again replaces the previous schedule.
func (j *Journal) StartPruning(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		n, err := j.PruneAll(context.Background())
		if err != nil {
			log.Printf("journal cron: prune failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("journal cron: pruned %d revision(s)", n)
		}
	}); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	j.mu.Lock()
	if j.cronSched != nil {
		j.cronSched.Stop()
	}
	j.cronSched = c
	j.mu.Unlock()

	c.Start()
	log.Printf("journal cron: pruning on %q, keeping %d per board", schedule, j.keep)
	return nil
}

// Stop cancels the schedule and waits for running prunes.
func (j *Journal) Stop(ctx context.Context) error {
	j.mu.Lock()
	c := j.cronSched
	j.cronSched = nil
	j.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	return j.jobs.Wait(ctx)
}
