package domain

import "time"

// Revision is one verified save of a board document, kept in the journal.
type Revision struct {
	ID        string    `json:"id"`
	BoardPath string    `json:"boardPath"`
	Checksum  string    `json:"checksum"`
	Document  string    `json:"document,omitempty"`
	CardCount int       `json:"cardCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type RevisionStore interface {
	AppendRevision(r *Revision) error
	ListRevisions(boardPath string, limit int) ([]Revision, error)
	GetRevision(id string) (*Revision, error)
	LatestChecksum(boardPath string) (string, error)
	PruneRevisions(boardPath string, keep int) (int, error)
	JournaledBoards() ([]string, error)
}
