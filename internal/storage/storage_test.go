package storage_test

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// FileStore
// ─────────────────────────────────────────────────────────────

func TestFileStore_WriteRead(t *testing.T) {
	s := storage.NewFileStore(t.TempDir())
	if err := s.WriteText("boards/a.json", "{}"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.ReadText("boards/a.json")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "{}" {
		t.Errorf("read = %q", got)
	}
}

func TestFileStore_MissingFile(t *testing.T) {
	s := storage.NewFileStore(t.TempDir())
	_, err := s.ReadText("nope.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestFileStore_ResolveDisplayPath(t *testing.T) {
	root := t.TempDir()
	s := storage.NewFileStore(root)
	got := s.ResolveDisplayPath("img/cat.png")
	if !strings.HasPrefix(got, "file://") || !strings.HasSuffix(got, "/img/cat.png") {
		t.Errorf("display path = %q", got)
	}
}

func TestFileStore_ImageSize(t *testing.T) {
	root := t.TempDir()
	f, err := os.Create(filepath.Join(root, "pic.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s := storage.NewFileStore(root)
	w, h, err := s.ImageSize("pic.png")
	if err != nil {
		t.Fatalf("image size: %v", err)
	}
	if w != 40 || h != 20 {
		t.Errorf("size = %dx%d, want 40x20", w, h)
	}

	if err := os.WriteFile(filepath.Join(root, "bad.png"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.ImageSize("bad.png"); err == nil {
		t.Error("expected an error for a non-image")
	}
}

// ─────────────────────────────────────────────────────────────
// RevisionStore (sqlite)
// ─────────────────────────────────────────────────────────────

func openJournal(t *testing.T) *storage.RevisionStore {
	t.Helper()
	db, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "journal", "board.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return storage.NewRevisionStore(db)
}

func appendN(t *testing.T, s *storage.RevisionStore, path string, n int) []string {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < n; i++ {
		r := &domain.Revision{
			BoardPath: path,
			Checksum:  fmt.Sprintf("sum-%d", i),
			Document:  fmt.Sprintf(`{"n":%d}`, i),
			CardCount: i,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.AppendRevision(r); err != nil {
			t.Fatalf("append: %v", err)
		}
		if r.ID == "" {
			t.Fatal("expected an ID to be assigned")
		}
		ids = append(ids, r.ID)
	}
	return ids
}

func TestRevisionStore_AppendListGet(t *testing.T) {
	s := openJournal(t)
	ids := appendN(t, s, "/b/one.json", 3)
	appendN(t, s, "/b/two.json", 1)

	list, err := s.ListRevisions("/b/one.json", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(list))
	}
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Errorf("expected newest first, got %s..%s", list[0].ID, list[2].ID)
	}
	if list[0].Document != "" {
		t.Error("listing should not carry documents")
	}

	r, err := s.GetRevision(ids[1])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if r.Document != `{"n":1}` || r.CardCount != 1 || r.BoardPath != "/b/one.json" {
		t.Errorf("revision = %+v", r)
	}

	sum, err := s.LatestChecksum("/b/one.json")
	if err != nil || sum != "sum-2" {
		t.Errorf("latest checksum = %q, %v", sum, err)
	}
	if sum, _ := s.LatestChecksum("/b/none.json"); sum != "" {
		t.Errorf("unknown board checksum = %q", sum)
	}

	boards, err := s.JournaledBoards()
	if err != nil {
		t.Fatal(err)
	}
	if len(boards) != 2 || boards[0] != "/b/one.json" || boards[1] != "/b/two.json" {
		t.Errorf("boards = %v", boards)
	}
}

func TestRevisionStore_GetUnknown(t *testing.T) {
	s := openJournal(t)
	if _, err := s.GetRevision("missing"); !errors.Is(err, storage.ErrRevisionNotFound) {
		t.Errorf("err = %v, want ErrRevisionNotFound", err)
	}
}

func TestRevisionStore_PruneKeepsNewest(t *testing.T) {
	s := openJournal(t)
	ids := appendN(t, s, "/b/one.json", 5)
	appendN(t, s, "/b/two.json", 2)

	n, err := s.PruneRevisions("/b/one.json", 2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Errorf("pruned %d, want 3", n)
	}
	list, _ := s.ListRevisions("/b/one.json", 10)
	if len(list) != 2 || list[0].ID != ids[4] || list[1].ID != ids[3] {
		t.Errorf("remaining = %+v", list)
	}
	other, _ := s.ListRevisions("/b/two.json", 10)
	if len(other) != 2 {
		t.Errorf("prune touched another board: %d left", len(other))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := storage.Open("oracle", "x"); err == nil {
		t.Error("expected an error")
	}
}

// ─────────────────────────────────────────────────────────────
// DSN
// ─────────────────────────────────────────────────────────────

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		driver string
		p      storage.ConnParams
		want   string
	}{
		{
			storage.DriverPostgres,
			storage.ConnParams{Host: "db", User: "leto", Password: "pw", Database: "boards"},
			"postgres://leto:pw@db:5432/boards?sslmode=disable",
		},
		{
			storage.DriverMySQL,
			storage.ConnParams{Host: "db", Port: 3307, User: "leto", Password: "pw", Database: "boards", SSLMode: "require"},
			"leto:pw@tcp(db:3307)/boards?parseTime=true&charset=utf8mb4&tls=true",
		},
		{
			storage.DriverSQLite,
			storage.ConnParams{Database: "/tmp/j.db"},
			"/tmp/j.db",
		},
	}
	for _, tc := range tests {
		t.Run(tc.driver, func(t *testing.T) {
			got, err := storage.BuildDSN(tc.driver, tc.p)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("dsn = %q, want %q", got, tc.want)
			}
		})
	}
}
