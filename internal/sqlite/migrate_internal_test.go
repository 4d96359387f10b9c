package sqlite

import (
	"log/slog"
	"testing"

	"github.com/myrjola/repcoach/internal/testhelpers"
)

func TestDatabase_migrateTo(t *testing.T) {
	t.Parallel()

	const (
		table      = "CREATE TABLE streaks (id INTEGER PRIMARY KEY, days INTEGER)"
		wideTable  = "CREATE TABLE streaks (id INTEGER PRIMARY KEY, days INTEGER, label TEXT)"
		index      = "CREATE INDEX streaks_days ON streaks (days)"
		wideIndex  = "CREATE INDEX streaks_days ON streaks (days, id)"
		failInsert = "CREATE TRIGGER streaks_guard AFTER INSERT ON streaks BEGIN SELECT RAISE(FAIL, 'guarded'); END"
		noopInsert = "CREATE TRIGGER streaks_guard AFTER INSERT ON streaks BEGIN SELECT 1; END"
	)

	tests := []struct {
		name    string
		schemas []string
		query   string
		wantErr bool
	}{
		{name: "empty schema", schemas: []string{""}, query: "SELECT * FROM sqlite_schema"},
		{name: "create table", schemas: []string{table}, query: "INSERT INTO streaks (days) VALUES (1)"},
		{name: "drop table", schemas: []string{table, ""}, query: "INSERT INTO streaks (days) VALUES (1)", wantErr: true},
		{name: "add column", schemas: []string{table, wideTable}, query: "INSERT INTO streaks (label) VALUES ('x')"},
		{
			name:    "remove column",
			schemas: []string{wideTable, table},
			query:   "INSERT INTO streaks (label) VALUES ('x')",
			wantErr: true,
		},
		{name: "create index", schemas: []string{table + ";" + index}, query: "DROP INDEX streaks_days"},
		{name: "drop index", schemas: []string{table + ";" + index, table}, query: "DROP INDEX streaks_days", wantErr: true},
		{name: "change index", schemas: []string{table + ";" + index, table + ";" + wideIndex}, query: "DROP INDEX streaks_days"},
		{
			name:    "index survives table rebuild",
			schemas: []string{table + ";" + index, wideTable + ";" + index},
			query:   "DROP INDEX streaks_days",
		},
		{
			name:    "create trigger",
			schemas: []string{table + ";" + failInsert},
			query:   "INSERT INTO streaks (days) VALUES (1)",
			wantErr: true,
		},
		{name: "drop trigger", schemas: []string{table + ";" + failInsert, table}, query: "INSERT INTO streaks (days) VALUES (1)"},
		{
			name:    "change trigger",
			schemas: []string{table + ";" + failInsert, table + ";" + noopInsert},
			query:   "INSERT INTO streaks (days) VALUES (1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := t.Context()
			logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
			db, err := connect(ctx, ":memory:", logger)
			if err != nil {
				t.Fatalf("connect: %v", err)
			}
			t.Cleanup(func() {
				if err = db.Close(); err != nil {
					t.Errorf("close: %v", err)
				}
			})

			for _, schema := range tt.schemas {
				logger.LogAttrs(ctx, slog.LevelDebug, "migrating", slog.String("schema", schema))
				if err = db.migrateTo(ctx, schema); err != nil {
					t.Fatalf("migrateTo: %v", err)
				}
			}

			_, err = db.ReadWrite.ExecContext(ctx, tt.query)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for %q", tt.query)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for %q: %v", tt.query, err)
			}
		})
	}
}

func TestDatabase_migrateTo_keepsRows(t *testing.T) {
	ctx := t.Context()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := connect(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = db.migrateTo(ctx, "CREATE TABLE sessions (id INTEGER PRIMARY KEY, volume REAL)"); err != nil {
		t.Fatalf("migrateTo: %v", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "INSERT INTO sessions (volume) VALUES (42)"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err = db.migrateTo(ctx, "CREATE TABLE sessions (id INTEGER PRIMARY KEY, volume REAL, unit TEXT)"); err != nil {
		t.Fatalf("migrateTo: %v", err)
	}

	var volume float64
	if err = db.ReadOnly.QueryRowContext(ctx, "SELECT volume FROM sessions").Scan(&volume); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got, want := volume, 42.0; got != want {
		t.Errorf("volume: got %v, want %v", got, want)
	}
}

func TestNewDatabase_appliesSchema(t *testing.T) {
	ctx := t.Context()
	db, err := NewDatabase(ctx, ":memory:", testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"users", "completed_days", "session_history", "training_preferences", "gym_sessions"} {
		var n int
		if err = db.ReadOnly.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM sqlite_schema WHERE type = 'table' AND name = ?", table).Scan(&n); err != nil {
			t.Fatalf("query: %v", err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}
