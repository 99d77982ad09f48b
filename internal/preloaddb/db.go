// Package preloaddb holds the generated level preload database: one
// entry per level with the asset list the collector produced and the
// rules that produced it.
package preloaddb

import (
	"sort"
	"strings"
	"time"

	"leveltracker.gg/internal/asset"
	"leveltracker.gg/internal/rules"
)

// Entry is one level's generated preload record.
type Entry struct {
	Level       string           `json:"level" yaml:"level"`
	Partitioned bool             `json:"partitioned,omitempty" yaml:"partitioned,omitempty"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Assets      []asset.ID       `json:"assets" yaml:"assets"`
	Rules       rules.LevelRules `json:"rules" yaml:"rules"`
}

// Database is the in-memory entry table keyed by level package path.
type Database struct {
	entries map[string]Entry
}

func New() *Database {
	return &Database{entries: make(map[string]Entry)}
}

// Upsert inserts or replaces the entry for its level. Level paths are
// compared exactly after trimming.
func (d *Database) Upsert(e Entry) {
	e.Level = strings.TrimSpace(e.Level)
	if e.Level == "" {
		return
	}
	d.entries[e.Level] = e
}

// Find returns the entry for a level. The boolean reports presence.
func (d *Database) Find(level string) (Entry, bool) {
	e, ok := d.entries[strings.TrimSpace(level)]
	return e, ok
}

// Remove deletes a level's entry and reports whether one existed.
func (d *Database) Remove(level string) bool {
	level = strings.TrimSpace(level)
	if _, ok := d.entries[level]; !ok {
		return false
	}
	delete(d.entries, level)
	return true
}

// Levels lists every recorded level path in lexical order.
func (d *Database) Levels() []string {
	out := make([]string, 0, len(d.entries))
	for level := range d.entries {
		out = append(out, level)
	}
	sort.Strings(out)
	return out
}

func (d *Database) Len() int { return len(d.entries) }
