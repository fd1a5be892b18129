package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "winshortcuts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLoadEmptyStoreReturnsDefaults(t *testing.T) {
	s := openTemp(t)

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := openTemp(t)

	hash, err := HashToken("secret-token")
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	want := Config{
		ControlEnabled:   true,
		ControlAddr:      "127.0.0.1:50000",
		ControlTokenHash: hash,
		LogRetentionDays: 30,
		Notify:           false,
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative retention", func(c *Config) { c.LogRetentionDays = -1 }, true},
		{"bad addr", func(c *Config) { c.ControlAddr = "nope" }, true},
		{"bad port", func(c *Config) { c.ControlAddr = "127.0.0.1:70000" }, true},
		{"enabled without token", func(c *Config) { c.ControlEnabled = true }, true},
		{"enabled on lan", func(c *Config) {
			c.ControlEnabled = true
			c.ControlTokenHash = "x"
			c.ControlAddr = "0.0.0.0:47811"
		}, true},
		{"enabled on localhost", func(c *Config) {
			c.ControlEnabled = true
			c.ControlTokenHash = "x"
			c.ControlAddr = "localhost:47811"
		}, false},
		{"enabled on empty host", func(c *Config) {
			c.ControlEnabled = true
			c.ControlTokenHash = "x"
			c.ControlAddr = ":47811"
		}, true},
		{"enabled on ipv6 wildcard", func(c *Config) {
			c.ControlEnabled = true
			c.ControlTokenHash = "x"
			c.ControlAddr = "[::]:47811"
		}, true},
		{"enabled on ipv6 loopback", func(c *Config) {
			c.ControlEnabled = true
			c.ControlTokenHash = "x"
			c.ControlAddr = "[::1]:47811"
		}, false},
		{"disabled on empty host", func(c *Config) { c.ControlAddr = ":47811" }, true},
		{"disabled on lan", func(c *Config) { c.ControlAddr = "192.168.1.5:47811" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v should wrap ErrInvalid", err)
			}
		})
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	s := openTemp(t)

	bad := Default()
	bad.LogRetentionDays = -3
	if err := s.Save(bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Save() = %v, want ErrInvalid", err)
	}

	cfg, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogRetentionDays != defaultLogDays {
		t.Errorf("invalid save leaked into the store: %+v", cfg)
	}
}

func TestSet(t *testing.T) {
	s := openTemp(t)

	cfg, err := s.Set("log_retention_days", "14")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.LogRetentionDays != 14 {
		t.Errorf("LogRetentionDays = %d, want 14", cfg.LogRetentionDays)
	}

	if _, err := s.Set("notify", "off"); err != nil {
		t.Fatalf("Set notify: %v", err)
	}
	cfg, _ = s.Load()
	if cfg.Notify {
		t.Error("notify should be off")
	}

	for _, tc := range [][2]string{
		{"log_retention_days", "many"},
		{"control_token_hash", "abc"},
		{"hot_corner", "1"},
		{"control_enabled", "1"},
	} {
		if _, err := s.Set(tc[0], tc[1]); !errors.Is(err, ErrInvalid) {
			t.Errorf("Set(%q, %q) = %v, want ErrInvalid", tc[0], tc[1], err)
		}
	}
}

func TestTokenHashing(t *testing.T) {
	tok, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if len(tok) < 40 {
		t.Errorf("token too short: %q", tok)
	}

	hash, err := HashToken(tok)
	if err != nil {
		t.Fatalf("HashToken: %v", err)
	}
	if !CheckToken(hash, tok) {
		t.Error("CheckToken rejected the right token")
	}
	if CheckToken(hash, tok+"x") {
		t.Error("CheckToken accepted a wrong token")
	}
	if CheckToken("", tok) || CheckToken(hash, "") {
		t.Error("empty hash or token must never match")
	}
	if _, err := HashToken("  "); !errors.Is(err, ErrInvalid) {
		t.Errorf("HashToken(blank) = %v, want ErrInvalid", err)
	}
}

func TestValuesHidesTokenHash(t *testing.T) {
	cfg := Default()
	cfg.ControlTokenHash = "$2a$10$abcdef"
	for _, kv := range Values(cfg) {
		if kv[0] == "control_token_hash" && kv[1] != "(set)" {
			t.Errorf("hash rendered as %q", kv[1])
		}
	}
	if len(Values(cfg)) != len(Keys) {
		t.Errorf("Values has %d rows, Keys has %d", len(Values(cfg)), len(Keys))
	}
}

func TestSetBlockerHotkey(t *testing.T) {
	s := openTemp(t)

	cfg, err := s.Set("blocker_hotkey", "Alt+Ctrl+W")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if cfg.BlockerHotkey != "ctrl+alt+w" {
		t.Errorf("BlockerHotkey = %q, want canonical ctrl+alt+w", cfg.BlockerHotkey)
	}
	if cfg, _ = s.Load(); cfg.BlockerHotkey != "ctrl+alt+w" {
		t.Errorf("reloaded BlockerHotkey = %q", cfg.BlockerHotkey)
	}

	if _, err := s.Set("blocker_hotkey", "w"); !errors.Is(err, ErrInvalid) {
		t.Errorf("Set(plain key) = %v, want ErrInvalid", err)
	}

	if cfg, err = s.Set("blocker_hotkey", "off"); err != nil || cfg.BlockerHotkey != "" {
		t.Errorf("Set(off) = %q, %v", cfg.BlockerHotkey, err)
	}
}

func TestValidateRejectsBadHotkey(t *testing.T) {
	cfg := Default()
	cfg.BlockerHotkey = "ctrl+nope"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() = %v, want ErrInvalid", err)
	}
}

func TestSetRejectsWildcardAddr(t *testing.T) {
	s := openTemp(t)
	for _, addr := range []string{":47811", "0.0.0.0:47811", "[::]:47811"} {
		if _, err := s.Set("control_addr", addr); !errors.Is(err, ErrInvalid) {
			t.Errorf("Set(control_addr, %q) = %v, want ErrInvalid", addr, err)
		}
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ControlAddr != DefaultAddr {
		t.Errorf("rejected address leaked into the store: %q", cfg.ControlAddr)
	}
}
