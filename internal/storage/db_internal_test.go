package storage

import "testing"

func TestRebind(t *testing.T) {
	q := `SELECT id FROM board_revisions WHERE board_path = ? AND id <> ? LIMIT ?`
	pg := &DB{driver: DriverPostgres}
	if got, want := pg.rebind(q), `SELECT id FROM board_revisions WHERE board_path = $1 AND id <> $2 LIMIT $3`; got != want {
		t.Errorf("postgres rebind = %q", got)
	}
	for _, d := range []string{DriverSQLite, DriverMySQL} {
		db := &DB{driver: d}
		if got := db.rebind(q); got != q {
			t.Errorf("%s rebind changed the query: %q", d, got)
		}
	}
}
