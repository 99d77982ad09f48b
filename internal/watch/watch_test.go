package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsRulesChange(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rules, []byte("levels: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(rules)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(rules, []byte("defaults: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if filepath.Base(got) != "rules.yaml" {
			t.Fatalf("event for %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for rules change")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(rules, []byte("levels: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(rules)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		t.Fatalf("unexpected event for %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}
