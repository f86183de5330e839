package sqlite

import (
	"path/filepath"
	"testing"
)

// The driver only honors pragmas in _pragma=name(value) form; a regression
// here silently reverts the journal to rollback mode and drops the busy
// timeout, and concurrent writers start failing instead of queueing.
func TestNewAppliesConnectionPragmas(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var journalMode string
	if err := db.conn.QueryRow(`PRAGMA journal_mode`).Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}

	var busyTimeout int
	if err := db.conn.QueryRow(`PRAGMA busy_timeout`).Scan(&busyTimeout); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busyTimeout)
	}
}
