package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestReadMigrations_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_more.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_b;")},
		"sql/migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE test_a (id INT);")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE IF EXISTS test_a;")},
		"sql/migrations/0002_more.up.sql":   {Data: []byte("CREATE TABLE test_b (id INT);")},
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		t.Fatalf("readMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Version != 2 || migrations[1].Up != "CREATE TABLE test_b (id INT);" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestReadMigrations_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr string
	}{
		{
			name: "missing down",
			files: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "both up and down",
		},
		{
			name: "invalid file name",
			files: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "expected .up.sql or .down.sql",
		},
		{
			name: "non numeric version",
			files: fstest.MapFS{
				"sql/migrations/abc_init.up.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "invalid version",
		},
		{
			name: "empty body",
			files: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":   {Data: []byte("   \n")},
				"sql/migrations/0001_init.down.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "is empty",
		},
		{
			name: "name mismatch",
			files: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":    {Data: []byte("SELECT 1;")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: "conflicting names",
		},
		{
			name:    "no directory",
			files:   fstest.MapFS{},
			wantErr: "read migrations dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readMigrations(tt.files)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEmbeddedMigrationsAreConsistent(t *testing.T) {
	t.Parallel()

	migrations, err := readMigrations(embeddedMigrations)
	if err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 embedded migrations, got %d", len(migrations))
	}
	if !strings.Contains(migrations[0].Up, "CREATE TABLE IF NOT EXISTS products") {
		t.Fatalf("first migration should create products table")
	}
	if !strings.Contains(migrations[1].Up, "ON DELETE CASCADE") {
		t.Fatalf("cart items must cascade on product deletion")
	}
}
