package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMemorySourceLookup(t *testing.T) {
	src := NewMemorySource(
		Run{Signature: "lulesh", Best: []map[string]int{{"THREADS": 8}}},
		Run{Signature: "lulesh", Best: []map[string]int{{"THREADS": 4}}},
		Run{Signature: "amg", Best: []map[string]int{{"THREADS": 2}}},
	)

	runs, err := src.Lookup("lulesh")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(runs) != 2 || runs[0].Best[0]["THREADS"] != 8 {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	if _, err := src.Lookup("missing"); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}

	sigs := src.Signatures()
	if len(sigs) != 2 || sigs[0] != "amg" || sigs[1] != "lulesh" {
		t.Fatalf("unexpected signatures %v", sigs)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.yaml")
	content := `
runs:
  - signature: lulesh
    strategy: exhaustive
    objective: time
    best:
      - {THREADS: 4, FREQ: 2000}
      - {THREADS: 8, FREQ: 2000}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	runs, err := src.Lookup("lulesh")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(runs[0].Best) != 2 || runs[0].Best[1]["THREADS"] != 8 {
		t.Fatalf("unexpected best list %+v", runs[0].Best)
	}
}

func TestParseYAMLRejectsEmptySignature(t *testing.T) {
	if _, err := ParseYAML([]byte("runs: [{best: []}]")); err == nil {
		t.Fatal("expected error for run without signature")
	}
}
