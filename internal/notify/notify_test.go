package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/dylanchu/WinShortcuts/internal/hook"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
)

type captured struct {
	titles, messages []string
}

func newCapturing(enabled bool) (*Notifier, *captured) {
	c := &captured{}
	n := New(enabled)
	n.send = func(title, message string) error {
		c.titles = append(c.titles, title)
		c.messages = append(c.messages, message)
		return nil
	}
	return n, c
}

func TestHookFailedNotifies(t *testing.T) {
	n, c := newCapturing(true)
	n.HookFailed(&shortcuts.HookRegistrationError{
		Feature: shortcuts.LWinBlocker,
		Kind:    hook.Keyboard,
		Err:     errors.New("access denied"),
	})

	if len(c.messages) != 1 {
		t.Fatalf("expected one notification, got %d", len(c.messages))
	}
	if c.titles[0] != "WinShortcuts" {
		t.Errorf("title = %q", c.titles[0])
	}
	if !strings.Contains(c.messages[0], "Block LWin") || !strings.Contains(c.messages[0], "access denied") {
		t.Errorf("message = %q", c.messages[0])
	}
}

func TestHookFailedUnsupportedPlatform(t *testing.T) {
	n, c := newCapturing(true)
	n.HookFailed(&shortcuts.HookRegistrationError{Feature: shortcuts.HotCorner, Kind: hook.Mouse, Err: hook.ErrUnsupported})
	if len(c.messages) != 1 || !strings.Contains(c.messages[0], "Hot Corner") {
		t.Errorf("messages = %q", c.messages)
	}
}

func TestHookFailedIgnoresOtherErrors(t *testing.T) {
	n, c := newCapturing(true)
	n.HookFailed(nil)
	n.HookFailed(shortcuts.ErrClosed)
	if len(c.messages) != 0 {
		t.Errorf("unexpected notifications: %q", c.messages)
	}
}

func TestDisabledNotifierIsSilent(t *testing.T) {
	n, c := newCapturing(false)
	if err := n.Notify("hello"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	n.SetEnabled(true)
	_ = n.Notify("world")
	if len(c.messages) != 1 || c.messages[0] != "world" {
		t.Errorf("messages = %q", c.messages)
	}
}
