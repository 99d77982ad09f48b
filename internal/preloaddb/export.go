package preloaddb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// exportDoc is the YAML shape lptool reads and writes.
type exportDoc struct {
	Entries []Entry `yaml:"entries"`
}

// ExportYAML writes every entry to a YAML file, levels in lexical
// order so exports diff cleanly.
func ExportYAML(db *Database, path string) error {
	doc := exportDoc{}
	for _, level := range db.Levels() {
		e, _ := db.Find(level)
		doc.Entries = append(doc.Entries, e)
	}
	raw, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// ImportYAML reads a YAML export back into an in-memory database.
// Later duplicates of a level replace earlier ones.
func ImportYAML(path string) (*Database, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc exportDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("preload db %s: %w", path, err)
	}
	db := New()
	for _, e := range doc.Entries {
		db.Upsert(e)
	}
	return db, nil
}
