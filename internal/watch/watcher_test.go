package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DetectsTableEdit(t *testing.T) {
	dir := t.TempDir()

	table := filepath.Join(dir, "gene_scores.tsv")
	if err := os.WriteFile(table, []byte("gene\ty_prob_max\nTP53\t0.9\n"), 0644); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	w, err := NewWatcher(table)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(table, []byte("gene\ty_prob_max\nTP53\t0.95\n"), 0644); err != nil {
		t.Fatalf("failed to update table: %v", err)
	}

	select {
	case change := <-w.Changes:
		want, _ := filepath.Abs(table)
		if change.File != want {
			t.Errorf("change file = %q, want %q", change.File, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}
}

func TestWatcher_IgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()

	table := filepath.Join(dir, "gene_scores.tsv")
	if err := os.WriteFile(table, []byte("gene\n"), 0644); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	w, err := NewWatcher(table)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// A sibling file in the same directory is not a watched table.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	select {
	case change := <-w.Changes:
		t.Errorf("unexpected change event: %+v", change)
	case <-time.After(500 * time.Millisecond):
		// Expected: no events for unwatched files.
	}
}

func TestWatcher_DetectsRenameIntoPlace(t *testing.T) {
	dir := t.TempDir()

	table := filepath.Join(dir, "thresholds.json")
	if err := os.WriteFile(table, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}

	w, err := NewWatcher(table)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	// Atomic save: write a temp file, then rename over the table.
	tmp := filepath.Join(dir, ".thresholds.json.tmp")
	if err := os.WriteFile(tmp, []byte(`{"P95_threshold": 0.8}`), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if err := os.Rename(tmp, table); err != nil {
		t.Fatalf("failed to rename: %v", err)
	}

	select {
	case change := <-w.Changes:
		want, _ := filepath.Abs(table)
		if change.File != want {
			t.Errorf("change file = %q, want %q", change.File, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for rename event")
	}
}

func TestWatcher_SkipsEmptyPaths(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "a.tsv")
	if err := os.WriteFile(table, []byte("gene\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(table, "", "")
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	w.Stop()
}
