package main

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/dylanchu/WinShortcuts/internal/startup"
)

func TestDelayedStartKeepsCommandLine(t *testing.T) {
	line := startup.CommandLine(`C:\Program Files\WinShortcuts\winshortcuts.exe`, "--log-dir", `C:\my logs`)
	cmd := delayedStart(line)
	if len(cmd.Args) == 0 {
		t.Fatal("no args")
	}
	last := cmd.Args[len(cmd.Args)-1]
	if !strings.HasSuffix(last, line) {
		t.Fatalf("command %q does not end with %q", last, line)
	}
	if !strings.Contains(last, `"C:\my logs"`) {
		t.Fatalf("argument with spaces not quoted: %q", last)
	}
}

func TestAutostartArgs(t *testing.T) {
	if got := autostartArgs(&options{}); len(got) != 0 {
		t.Errorf("default paths: args = %q, want none", got)
	}

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.db")
	logDir := filepath.Join(dir, "my logs")
	got := autostartArgs(&options{configPath: cfgPath, logDir: logDir})
	want := []string{"--config", cfgPath, "--log-dir", logDir}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}

	got = autostartArgs(&options{logDir: "logs"})
	if len(got) != 2 || got[0] != "--log-dir" || !filepath.IsAbs(got[1]) {
		t.Errorf("relative log dir: args = %q, want an absolute path", got)
	}

	line := startup.CommandLine(`C:\winshortcuts.exe`, autostartArgs(&options{logDir: logDir})...)
	if !strings.Contains(line, "--log-dir") {
		t.Errorf("command line %q lost --log-dir", line)
	}
}
