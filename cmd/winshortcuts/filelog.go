package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logPrefix = "winshortcuts-"

// exeDir returns the directory of the running executable, falling back to
// the working directory.
func exeDir() string {
	p, err := os.Executable()
	if err != nil || p == "" {
		if wd, err2 := os.Getwd(); err2 == nil && wd != "" {
			return wd
		}
		return "."
	}
	return filepath.Dir(p)
}

func resolveLogDir(dir string) (string, error) {
	if dir == "" {
		dir = filepath.Join(exeDir(), "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// logFileName is one file per day.
func logFileName(now time.Time) string {
	return logPrefix + now.Format("2006-01-02") + ".log"
}

// initLogging wires the standard logger to the daily file and hub. It must
// run before anything else logs.
func initLogging(dir string, hub io.Writer) (func(), error) {
	ld, err := resolveLogDir(dir)
	if err != nil {
		return func() {}, err
	}
	p := filepath.Join(ld, logFileName(time.Now()))
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func() {}, fmt.Errorf("open log file %s: %w", p, err)
	}

	out := io.Writer(f)
	if hub != nil {
		out = io.MultiWriter(f, hub)
	}
	log.SetOutput(out)

	return func() { _ = f.Close() }, nil
}

// purgeOldLogs deletes our log files in dir older than retentionDays and
// reports how many files and bytes went. retentionDays <= 0 keeps everything.
func purgeOldLogs(dir string, retentionDays int, now time.Time) (int, int64, error) {
	if retentionDays <= 0 {
		return 0, 0, nil
	}
	ld, err := resolveLogDir(dir)
	if err != nil {
		return 0, 0, err
	}
	entries, err := os.ReadDir(ld)
	if err != nil {
		return 0, 0, err
	}
	cutoff := now.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	removed := 0
	var freed int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), logPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(ld, e.Name())) == nil {
				removed++
				freed += info.Size()
			}
		}
	}
	return removed, freed, nil
}
