package db

import (
	"testing"
)

func TestOpenPragmas(t *testing.T) {
	conn, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	// In-memory databases do not support WAL and report "memory" instead.
	var journalMode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "memory" && journalMode != "wal" {
		t.Errorf("Expected journal_mode 'memory' or 'wal', got: %s", journalMode)
	}

	var busyTimeout int
	if err := conn.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("Failed to query busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("Expected busy_timeout 5000, got: %d", busyTimeout)
	}

	var syncMode int
	if err := conn.QueryRow("PRAGMA synchronous").Scan(&syncMode); err != nil {
		t.Fatalf("Failed to query synchronous: %v", err)
	}
	// 1 = NORMAL
	if syncMode != 1 && syncMode != 2 {
		t.Errorf("Expected synchronous 1 (NORMAL) or 2 (FULL), got: %d", syncMode)
	}
}

func TestOpenWALWithFile(t *testing.T) {
	tmpDB := t.TempDir() + "/test.db"

	conn, err := Open(tmpDB)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	var journalMode string
	if err := conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode 'wal' for file database, got: %s", journalMode)
	}
}

func TestMigrateSchema(t *testing.T) {
	tmpDB := t.TempDir() + "/test.db"

	conn, err := Open(tmpDB)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()

	tables := []string{"users", "messages", "receptions", "dossiers", "contacts", "pieces_jointes"}
	for _, table := range tables {
		var count int
		err := conn.QueryRow(`
			SELECT COUNT(*) FROM sqlite_master
			WHERE type = 'table' AND name = ?
		`, table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to inspect schema: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected table %s to exist", table)
		}
	}

	indexes := []string{
		"idx_receptions_message_destinataire",
		"idx_receptions_destinataire",
		"idx_receptions_dossier",
		"idx_messages_expediteur",
		"idx_dossiers_nom_proprietaire",
		"idx_contacts_proprietaire_contact",
		"idx_pieces_jointes_message",
	}
	for _, index := range indexes {
		var count int
		err := conn.QueryRow(`
			SELECT COUNT(*) FROM sqlite_master
			WHERE type = 'index' AND name = ?
		`, index).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to inspect index %s: %v", index, err)
		}
		if count != 1 {
			t.Errorf("Expected index %s to exist", index)
		}
	}

	// Opening an existing database runs Migrate again; IF NOT EXISTS keeps
	// it idempotent.
	conn2, err := Open(tmpDB)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	conn2.Close()
}
