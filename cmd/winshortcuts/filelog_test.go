package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogFileName(t *testing.T) {
	now := time.Date(2024, 3, 7, 23, 59, 0, 0, time.Local)
	if got, want := logFileName(now), "winshortcuts-2024-03-07.log"; got != want {
		t.Fatalf("logFileName = %q, want %q", got, want)
	}
}

func TestPurgeOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	write := func(name string, age time.Duration) {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		mt := now.Add(-age)
		if err := os.Chtimes(p, mt, mt); err != nil {
			t.Fatal(err)
		}
	}
	write("winshortcuts-old.log", 10*24*time.Hour)
	write("winshortcuts-new.log", time.Hour)
	write("unrelated.log", 30*24*time.Hour)

	n, size, err := purgeOldLogs(dir, 7, now)
	if err != nil {
		t.Fatalf("purgeOldLogs: %v", err)
	}
	if n != 1 || size != 2 {
		t.Fatalf("removed %d files (%d bytes), want 1 (2 bytes)", n, size)
	}
	for name, want := range map[string]bool{
		"winshortcuts-old.log": false,
		"winshortcuts-new.log": true,
		"unrelated.log":        true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if got := err == nil; got != want {
			t.Errorf("%s exists=%v, want %v", name, got, want)
		}
	}
}

func TestPurgeOldLogsZeroRetentionKeepsAll(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "winshortcuts-x.log")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-365 * 24 * time.Hour)
	_ = os.Chtimes(p, old, old)

	n, _, err := purgeOldLogs(dir, 0, time.Now())
	if err != nil || n != 0 {
		t.Fatalf("purgeOldLogs = %d, %v; want 0, nil", n, err)
	}
}

func TestLogRingWraps(t *testing.T) {
	r := newLogRing(3)
	r.appendMany([]string{"a", "b", "c", "d", "e"})
	if got := strings.Join(r.snapshot(), ","); got != "c,d,e" {
		t.Fatalf("snapshot = %q, want c,d,e", got)
	}
	if r.at(0) != "c" || r.at(5) != "" {
		t.Fatalf("at(0)=%q at(5)=%q", r.at(0), r.at(5))
	}
	if !r.consumeDirty() || r.consumeDirty() {
		t.Fatal("dirty flag should be consumed once")
	}
	r.clear()
	if r.len() != 0 {
		t.Fatalf("len after clear = %d", r.len())
	}
}

func TestDrainStopsWhenEmpty(t *testing.T) {
	ch := make(chan string, 10)
	for _, s := range []string{"1", "2", "3"} {
		ch <- s
	}
	if got := drain(ch, 2); len(got) != 2 {
		t.Fatalf("drain(2) = %v", got)
	}
	if got := drain(ch, 10); len(got) != 1 || got[0] != "3" {
		t.Fatalf("drain rest = %v", got)
	}
}
