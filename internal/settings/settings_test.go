package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.ListenAddr != "127.0.0.1:8090" || s.DatabaseFolder != DefaultDatabaseFolder {
		t.Fatalf("defaults = %+v", s)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := "listen_addr: 0.0.0.0:9000\ndatabase_folder: Preload\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LPT_DATABASE_FOLDER", "Override")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("listen_addr = %q", s.ListenAddr)
	}
	if s.DatabaseFolder != "Override" {
		t.Fatalf("database_folder = %q", s.DatabaseFolder)
	}
}

func TestResolveDatabasePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "/Game/_DataLPT/LevelPreloadDatabase"},
		{"  _DataLPT  ", "/Game/_DataLPT/LevelPreloadDatabase"},
		{"\\Preload\\Db\\", "/Game/Preload/Db/LevelPreloadDatabase"},
		{"/Game/Preload/", "/Game/Preload/LevelPreloadDatabase"},
		{"Game/Preload", "/Game/Preload/LevelPreloadDatabase"},
		{"Game", "/Game/_DataLPT/LevelPreloadDatabase"},
	}
	for _, tc := range cases {
		got, err := ResolveDatabasePath(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveDatabasePathInvalid(t *testing.T) {
	if _, err := ResolveDatabasePath("bad folder name"); err == nil {
		t.Fatal("whitespace folder accepted")
	}
}

func TestDatabaseFile(t *testing.T) {
	got := DatabaseFile("data", "/Game/_DataLPT/LevelPreloadDatabase")
	want := filepath.Join("data", "_DataLPT_LevelPreloadDatabase.db")
	if got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}
}
