// Package config stores application settings in a small SQLite key/value
// table. The hot corner and LWin blocker toggles are deliberately not part of
// it: every start applies the default policy.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dylanchu/WinShortcuts/internal/hotkeys"
)

const (
	AppName        = "WinShortcuts"
	DefaultAddr    = "127.0.0.1:47811"
	dbFileName     = "winshortcuts.db"
	defaultLogDays = 7
	tokenBytes     = 32
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	// Local control socket.
	ControlEnabled   bool
	ControlAddr      string
	ControlTokenHash string // bcrypt hash string

	LogRetentionDays int

	// Desktop notification when a hook cannot be installed.
	Notify bool

	// Global hotkey toggling the LWin blocker, e.g. "ctrl+alt+w". Empty is off.
	BlockerHotkey string
}

func Default() Config {
	return Config{
		ControlEnabled:   false,
		ControlAddr:      DefaultAddr,
		ControlTokenHash: "",
		LogRetentionDays: defaultLogDays,
		Notify:           true,
		BlockerHotkey:    "",
	}
}

// Validate checks cfg without touching the store.
func (c Config) Validate() error {
	if c.LogRetentionDays < 0 {
		return fmt.Errorf("%w: log_retention_days %d", ErrInvalid, c.LogRetentionDays)
	}
	host, port, err := net.SplitHostPort(c.ControlAddr)
	if err != nil {
		return fmt.Errorf("%w: control_addr %q: %v", ErrInvalid, c.ControlAddr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("%w: control_addr port %q", ErrInvalid, port)
	}
	if c.BlockerHotkey != "" {
		if _, err := hotkeys.Parse(c.BlockerHotkey); err != nil {
			return fmt.Errorf("%w: blocker_hotkey: %v", ErrInvalid, err)
		}
	}
	// An empty host listens on every interface.
	if !isLoopback(host) {
		return fmt.Errorf("%w: control_addr %q must be a loopback address", ErrInvalid, c.ControlAddr)
	}
	if c.ControlEnabled && c.ControlTokenHash == "" {
		return fmt.Errorf("%w: control socket enabled without a token (run `winshortcuts token`)", ErrInvalid)
	}
	return nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// DefaultPath is winshortcuts.db under the user config dir, falling back to
// a data directory beside the executable.
func DefaultPath() (string, error) {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppName, dbFileName), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "data", dbFileName), nil
}

// GenerateToken returns a random URL-safe control token.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the bcrypt hash stored as ControlTokenHash.
func HashToken(token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalid)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(h), nil
}

// CheckToken reports whether token matches hash.
func CheckToken(hash, token string) bool {
	if hash == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
