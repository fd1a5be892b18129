package config

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/dylanchu/WinShortcuts/internal/hotkeys"
)

const (
	keyControlEnabled   = "control_enabled"
	keyControlAddr      = "control_addr"
	keyControlTokenHash = "control_token_hash"
	keyLogRetentionDays = "log_retention_days"
	keyNotify           = "notify"
	keyBlockerHotkey    = "blocker_hotkey"
)

// Keys lists every setting name accepted by Set, in display order.
var Keys = []string{
	keyControlEnabled,
	keyControlAddr,
	keyControlTokenHash,
	keyLogRetentionDays,
	keyNotify,
	keyBlockerHotkey,
}

type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init settings table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Load returns the stored settings layered over Default. Unparsable values
// keep their defaults.
func (s *Store) Load() (Config, error) {
	cfg := Default()

	readStr := func(k string, dst *string) error {
		v, ok, err := s.get(k)
		if err != nil {
			return fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			*dst = v
		}
		return nil
	}
	readInt := func(k string, dst *int) error {
		v, ok, err := s.get(k)
		if err != nil {
			return fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
		return nil
	}
	readBool := func(k string, dst *bool) error {
		v, ok, err := s.get(k)
		if err != nil {
			return fmt.Errorf("read %s: %w", k, err)
		}
		if ok {
			*dst = parseBool(v)
		}
		return nil
	}

	if err := readBool(keyControlEnabled, &cfg.ControlEnabled); err != nil {
		return cfg, err
	}
	if err := readStr(keyControlAddr, &cfg.ControlAddr); err != nil {
		return cfg, err
	}
	if err := readStr(keyControlTokenHash, &cfg.ControlTokenHash); err != nil {
		return cfg, err
	}
	if err := readInt(keyLogRetentionDays, &cfg.LogRetentionDays); err != nil {
		return cfg, err
	}
	if err := readBool(keyNotify, &cfg.Notify); err != nil {
		return cfg, err
	}
	if err := readStr(keyBlockerHotkey, &cfg.BlockerHotkey); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save validates cfg and writes every field in one transaction.
func (s *Store) Save(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	write := func(k, v string) error {
		_, err := tx.Exec(`INSERT INTO settings(key,value) VALUES(?,?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v)
		if err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
		return nil
	}

	rows := [][2]string{
		{keyControlEnabled, formatBool(cfg.ControlEnabled)},
		{keyControlAddr, cfg.ControlAddr},
		{keyControlTokenHash, cfg.ControlTokenHash},
		{keyLogRetentionDays, strconv.Itoa(cfg.LogRetentionDays)},
		{keyNotify, formatBool(cfg.Notify)},
		{keyBlockerHotkey, cfg.BlockerHotkey},
	}
	for _, r := range rows {
		if err := write(r[0], r[1]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Set parses value into the field named key and saves the result.
func (s *Store) Set(key, value string) (Config, error) {
	cfg, err := s.Load()
	if err != nil {
		return cfg, err
	}
	value = strings.TrimSpace(value)
	switch key {
	case keyControlEnabled:
		cfg.ControlEnabled = parseBool(value)
	case keyControlAddr:
		cfg.ControlAddr = value
	case keyControlTokenHash:
		return cfg, fmt.Errorf("%w: %s is set with the token command", ErrInvalid, key)
	case keyLogRetentionDays:
		n, err := strconv.Atoi(value)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s %q", ErrInvalid, key, value)
		}
		cfg.LogRetentionDays = n
	case keyNotify:
		cfg.Notify = parseBool(value)
	case keyBlockerHotkey:
		switch strings.ToLower(value) {
		case "", "off", "none":
			cfg.BlockerHotkey = ""
		default:
			c, err := hotkeys.Parse(value)
			if err != nil {
				return cfg, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			cfg.BlockerHotkey = c.String()
		}
	default:
		return cfg, fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
	}
	if err := s.Save(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Values renders cfg as key/value pairs in Keys order. The token hash is
// reported only as present or absent.
func Values(cfg Config) [][2]string {
	hash := "(unset)"
	if cfg.ControlTokenHash != "" {
		hash = "(set)"
	}
	hk := cfg.BlockerHotkey
	if hk == "" {
		hk = "(off)"
	}
	return [][2]string{
		{keyControlEnabled, formatBool(cfg.ControlEnabled)},
		{keyControlAddr, cfg.ControlAddr},
		{keyControlTokenHash, hash},
		{keyLogRetentionDays, strconv.Itoa(cfg.LogRetentionDays)},
		{keyNotify, formatBool(cfg.Notify)},
		{keyBlockerHotkey, hk},
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
