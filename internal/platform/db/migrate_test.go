package db

import (
	"io"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		t.Fatalf("iofs.New: %v", err)
	}
	defer src.Close()

	first, err := src.First()
	if err != nil {
		t.Fatalf("First: %v", err)
	}
	if first != 1 {
		t.Errorf("expected first version 1, got %d", first)
	}

	up, _, err := src.ReadUp(first)
	if err != nil {
		t.Fatalf("ReadUp: %v", err)
	}
	defer up.Close()
	body, err := io.ReadAll(up)
	if err != nil {
		t.Fatal(err)
	}

	sql := string(body)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"users_email_key UNIQUE (email)",
		"CREATE TABLE IF NOT EXISTS chat_sessions",
		"CREATE TABLE IF NOT EXISTS chat_messages",
		"REFERENCES chat_sessions (id)",
		"CREATE TABLE IF NOT EXISTS patients",
		"patients_email_key UNIQUE (email)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("init migration missing %q", want)
		}
	}

	down, _, err := src.ReadDown(first)
	if err != nil {
		t.Fatalf("ReadDown: %v", err)
	}
	down.Close()
}

func TestMigrateDown_RejectsNonPositiveSteps(t *testing.T) {
	if err := MigrateDown("postgres://unused", 0); err == nil {
		t.Error("expected error for zero steps")
	}
}
