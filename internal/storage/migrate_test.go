package storage

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestMigrationFilesSorted(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/0002_b.sql": {Data: []byte("SELECT 2;")},
		"migrations/0001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md":  {Data: []byte("notes")},
		"migrations/0010_c.sql": {Data: []byte("SELECT 10;")},
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	want := []string{"0001_a.sql", "0002_b.sql", "0010_c.sql"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, files)
	}
}

func TestEmbeddedMigrationsCreateSchema(t *testing.T) {
	files, err := migrationFiles(migrationsFS)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected embedded migrations")
	}

	var all strings.Builder
	for _, f := range files {
		body, err := migrationsFS.ReadFile("migrations/" + f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		all.Write(body)
	}
	schema := all.String()
	for _, fragment := range []string{
		"email       TEXT        NOT NULL UNIQUE",
		"episode_id     INTEGER     NOT NULL UNIQUE",
	} {
		if !strings.Contains(schema, fragment) {
			t.Fatalf("expected schema to contain %q", fragment)
		}
	}
}
