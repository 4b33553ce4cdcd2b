package logbook

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestRecordFormatsRuns(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	book, err := New(filepath.Join(t.TempDir(), "logs", "history.log"), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Record(Run{Config: "Assets/Gen.cfg", Artifact: "Assets/Gen.generated.controller", Created: true, Layers: 2, Checksum: "0123456789abcdef0123"})
	book.Record(Run{Config: "Assets/Gen.cfg", Artifact: "Assets/Gen.generated.controller", Layers: 2, Checksum: "0123456789abcdef0123"})
	book.Record(Run{Config: "Assets/Bad.cfg", Err: errors.New("layer \"Base\": boom")})

	lines := book.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "2026-10-17T09:30:00Z INFO  created Assets/Gen.generated.controller") {
		t.Fatalf("unexpected created line: %q", lines[0])
	}
	if !strings.Contains(lines[0], "checksum=0123456789ab") || strings.Contains(lines[0], "0123456789abcdef") {
		t.Fatalf("checksum should be shortened: %q", lines[0])
	}
	if !strings.Contains(lines[1], "regenerated") {
		t.Fatalf("expected regenerated verb: %q", lines[1])
	}
	if !strings.Contains(lines[2], "ERROR Assets/Bad.cfg failed") {
		t.Fatalf("expected error line: %q", lines[2])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if book.Tail(5) != nil {
		t.Fatalf("nil logbook should have no tail")
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook should have no path")
	}
}
