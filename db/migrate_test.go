package db

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestExtractUpMigration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE a();", want: "CREATE TABLE a();"},
		{name: "up only", content: "-- +migrate Up\nCREATE TABLE a();", want: "CREATE TABLE a();"},
		{name: "up and down", content: "-- +migrate Up\nCREATE TABLE a();\n-- +migrate Down\nDROP TABLE a;", want: "CREATE TABLE a();"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.TrimSpace(ExtractUpMigration(tt.content))
			if got != tt.want {
				t.Fatalf("ExtractUpMigration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	content, err := migrationFS.ReadFile("migrations/" + entries[0].Name())
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	up := ExtractUpMigration(string(content))
	for _, table := range []string{"tournaments", "registrations", "matches", "match_reports", "team_stats"} {
		if !strings.Contains(up, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("initial migration does not create %s", table)
		}
	}
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	fsys := fstest.MapFS{"m/0001_a.sql": {Data: []byte("SELECT 1;")}}
	if err := ApplyMigrations(context.Background(), nil, fsys, "m"); err == nil {
		t.Fatal("expected error for nil db")
	}
}
