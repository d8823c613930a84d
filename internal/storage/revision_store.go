package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leth4/leto-sub000/internal/domain"
)

// ErrRevisionNotFound is returned by GetRevision for unknown IDs.
var ErrRevisionNotFound = errors.New("revision not found")

// RevisionStore keeps the journal of verified board saves.
type RevisionStore struct {
	db *DB
}

func NewRevisionStore(db *DB) *RevisionStore {
	return &RevisionStore{db: db}
}

var _ domain.RevisionStore = (*RevisionStore)(nil)

// AppendRevision records r. A missing ID or timestamp is filled in; IDs are
// time-ordered so revisions written in the same instant keep their order.
func (s *RevisionStore) AppendRevision(r *domain.Revision) error {
	if r.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("revision id: %w", err)
		}
		r.ID = id.String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Conn().Exec(s.db.rebind(
		`INSERT INTO board_revisions (id, board_path, checksum, document, card_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		r.ID, r.BoardPath, r.Checksum, r.Document, r.CardCount, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}
	return nil
}

// ListRevisions returns the newest revisions of a board, newest first,
// without their documents.
func (s *RevisionStore) ListRevisions(boardPath string, limit int) ([]domain.Revision, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Conn().Query(s.db.rebind(
		`SELECT id, board_path, checksum, card_count, created_at
		 FROM board_revisions WHERE board_path = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`), boardPath, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []domain.Revision
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.BoardPath, &r.Checksum, &r.CardCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRevision returns one revision including its document.
func (s *RevisionStore) GetRevision(id string) (*domain.Revision, error) {
	var r domain.Revision
	err := s.db.Conn().QueryRow(s.db.rebind(
		`SELECT id, board_path, checksum, document, card_count, created_at
		 FROM board_revisions WHERE id = ?`), id,
	).Scan(&r.ID, &r.BoardPath, &r.Checksum, &r.Document, &r.CardCount, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRevisionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get revision: %w", err)
	}
	return &r, nil
}

// LatestChecksum returns the checksum of the newest revision of a board, or
// "" when the board has none.
func (s *RevisionStore) LatestChecksum(boardPath string) (string, error) {
	var sum string
	err := s.db.Conn().QueryRow(s.db.rebind(
		`SELECT checksum FROM board_revisions WHERE board_path = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`), boardPath,
	).Scan(&sum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("latest checksum: %w", err)
	}
	return sum, nil
}

// PruneRevisions removes all but the newest keep revisions of a board and
// returns how many were deleted.
func (s *RevisionStore) PruneRevisions(boardPath string, keep int) (int, error) {
	// Collect IDs first and close the cursor before any writes.
	rows, err := s.db.Conn().Query(s.db.rebind(
		`SELECT id FROM board_revisions WHERE board_path = ?
		 ORDER BY created_at DESC, id DESC`), boardPath,
	)
	if err != nil {
		return 0, fmt.Errorf("list revisions for prune: %w", err)
	}
	var ids []string
	for n := 0; rows.Next(); n++ {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan revision id: %w", err)
		}
		if n >= keep {
			ids = append(ids, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := s.db.Conn().Exec(s.db.rebind(`DELETE FROM board_revisions WHERE id = ?`), id); err != nil {
			return 0, fmt.Errorf("delete revision %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// JournaledBoards lists every board path with at least one revision.
func (s *RevisionStore) JournaledBoards() ([]string, error) {
	rows, err := s.db.Conn().Query(`SELECT DISTINCT board_path FROM board_revisions ORDER BY board_path`)
	if err != nil {
		return nil, fmt.Errorf("list journaled boards: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan board path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
