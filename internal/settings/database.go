package settings

import (
	"fmt"
	"path/filepath"
	"strings"

	"leveltracker.gg/internal/asset"
)

// DefaultDatabaseFolder is used when no database folder is configured.
const DefaultDatabaseFolder = "_DataLPT"

// DatabaseObjectName is the fixed object name of the preload database
// inside its folder.
const DatabaseObjectName = "LevelPreloadDatabase"

// ResolveDatabasePath turns the configured database folder into the
// canonical database object path, /Game/<folder>/LevelPreloadDatabase.
// The folder is trimmed, backslashes become slashes, and any leading
// root or Game prefix is stripped before re-anchoring. An invalid
// result is an error: the caller treats the database as unavailable
// and every preload degrades.
func ResolveDatabasePath(folder string) (string, error) {
	f := strings.TrimSpace(folder)
	if f == "" {
		f = DefaultDatabaseFolder
	}
	f = strings.ReplaceAll(f, "\\", "/")
	f = strings.Trim(f, "/")
	f = strings.TrimPrefix(f, "Game/")
	f = strings.Trim(f, "/")
	if f == "" || f == "Game" {
		f = DefaultDatabaseFolder
	}

	path := "/Game/" + f + "/" + DatabaseObjectName
	id := asset.FromPackage(path)
	if !id.Valid() {
		return "", fmt.Errorf("invalid database folder %q", folder)
	}
	return path, nil
}

// DatabaseFile maps the resolved database object path to the sqlite
// file backing it under the data directory.
func DatabaseFile(dataDir, dbPath string) string {
	name := strings.ReplaceAll(strings.TrimPrefix(dbPath, "/Game/"), "/", "_")
	return filepath.Join(dataDir, name+".db")
}
