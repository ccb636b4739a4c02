package pipeline

import (
	"energy-pipeline/internal/model"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteResultFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-r-00000")
	entries := []model.Entry{
		{Key: "Commercial", Value: 125},
		{Key: "Lincoln Square", Value: 2.5},
		{Key: "Residential", Value: 0.1},
	}

	n, err := WriteResultFile(path, entries)
	if err != nil {
		t.Fatalf("WriteResultFile: %v", err)
	}
	if n != 3 {
		t.Errorf("got %d records, want 3", n)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Commercial\t125\nLincoln Square\t2.5\nResidential\t0.1\n"
	if string(data) != want {
		t.Errorf("unexpected file content:\n%q\nwant\n%q", data, want)
	}

	back, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}
	for i := range entries {
		if back[i] != entries[i] {
			t.Errorf("entry %d: got %+v, want %+v", i, back[i], entries[i])
		}
	}
}

func TestReadResultFileSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-r-00000")
	content := "Loop\t1\nno separator here\na\tb\tc\n\nUptown\t2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := ReadResultFile(path)
	if err != nil {
		t.Fatalf("ReadResultFile: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "Loop" || entries[1].Key != "Uptown" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestReadResultFileBadValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part-r-00000")
	if err := os.WriteFile(path, []byte("Loop\tlots\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadResultFile(path); err == nil {
		t.Fatal("expected error for a non-numeric value")
	}
}
