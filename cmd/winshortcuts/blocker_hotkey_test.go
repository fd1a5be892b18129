package main

import (
	"errors"
	"testing"

	"github.com/dylanchu/WinShortcuts/internal/hook/hooktest"
	"github.com/dylanchu/WinShortcuts/internal/hotkeys"
	"github.com/dylanchu/WinShortcuts/internal/notify"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
)

type nopViewer struct{}

func (nopViewer) TaskView() {}

type fakeBinder struct {
	bound []hotkeys.Combo
	fire  func()
	stops int
	err   error
}

func (f *fakeBinder) register(c hotkeys.Combo, fn func()) (func(), error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bound = append(f.bound, c)
	f.fire = fn
	return func() { f.stops++ }, nil
}

func newTestBinder(t *testing.T) (*blockerHotkey, *fakeBinder, *shortcuts.HookSet) {
	t.Helper()
	set, err := shortcuts.New(&hooktest.Registrar{}, nopViewer{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(set.Close)
	fb := &fakeBinder{}
	b := newBlockerHotkey(set, notify.New(false))
	b.register = fb.register
	return b, fb, set
}

func TestBlockerHotkeyTogglesBlocker(t *testing.T) {
	b, fb, set := newTestBinder(t)

	b.apply("ctrl+alt+w")
	if len(fb.bound) != 1 || fb.bound[0].String() != "ctrl+alt+w" {
		t.Fatalf("bound = %v", fb.bound)
	}

	fb.fire()
	if !set.LWinBlockerEnabled() {
		t.Fatal("hotkey did not enable the blocker")
	}
	fb.fire()
	if set.LWinBlockerEnabled() {
		t.Fatal("hotkey did not disable the blocker")
	}
}

func TestBlockerHotkeyRebinds(t *testing.T) {
	b, fb, _ := newTestBinder(t)

	b.apply("ctrl+alt+w")
	b.apply("ctrl+alt+w")
	if len(fb.bound) != 1 {
		t.Fatalf("same setting re-registered: %v", fb.bound)
	}

	b.apply("ctrl+shift+b")
	if len(fb.bound) != 2 || fb.stops != 1 {
		t.Fatalf("rebind: bound=%v stops=%d", fb.bound, fb.stops)
	}

	b.apply("")
	if fb.stops != 2 {
		t.Fatalf("clearing should unbind, stops=%d", fb.stops)
	}

	b.apply("not a hotkey")
	if len(fb.bound) != 2 {
		t.Fatalf("invalid setting registered: %v", fb.bound)
	}

	b.apply("ctrl+alt+w")
	b.close()
	if fb.stops != 3 {
		t.Fatalf("close should unbind, stops=%d", fb.stops)
	}
}

func TestBlockerHotkeyRegisterFailure(t *testing.T) {
	b, fb, _ := newTestBinder(t)
	fb.err = errors.New("taken")

	b.apply("ctrl+alt+w")
	b.close()
	if fb.stops != 0 {
		t.Fatalf("nothing was bound, stops=%d", fb.stops)
	}
}
