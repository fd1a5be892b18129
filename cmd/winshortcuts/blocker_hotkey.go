package main

import (
	"log"
	"sync"

	"github.com/dylanchu/WinShortcuts/internal/hotkeys"
	"github.com/dylanchu/WinShortcuts/internal/notify"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
)

// blockerHotkey keeps the configured LWin blocker toggle combination
// registered. apply is called at start and after every settings reload.
type blockerHotkey struct {
	set      *shortcuts.HookSet
	notifier *notify.Notifier
	register func(hotkeys.Combo, func()) (func(), error)

	mu      sync.Mutex
	current string
	stop    func()
}

func newBlockerHotkey(set *shortcuts.HookSet, n *notify.Notifier) *blockerHotkey {
	return &blockerHotkey{set: set, notifier: n, register: hotkeys.Register}
}

func (b *blockerHotkey) apply(setting string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if setting == b.current {
		return
	}
	b.unbindLocked()
	b.current = setting
	if setting == "" {
		return
	}

	c, err := hotkeys.Parse(setting)
	if err != nil {
		log.Printf("[hotkey] %v", err)
		return
	}
	stop, err := b.register(c, b.fire)
	if err != nil {
		log.Printf("[hotkey] %v", err)
		_ = b.notifier.Notify("Hotkey " + c.String() + " is unavailable: " + err.Error())
		return
	}
	b.stop = stop
	log.Printf("[hotkey] %s toggles Block LWin", c)
}

func (b *blockerHotkey) fire() {
	on, err := b.set.Toggle(shortcuts.LWinBlocker)
	if err != nil {
		log.Printf("[hotkey] toggle: %v", err)
		b.notifier.HookFailed(err)
		return
	}
	log.Printf("[hotkey] lwin_blocker enabled=%v", on)
}

func (b *blockerHotkey) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbindLocked()
	b.current = ""
}

func (b *blockerHotkey) unbindLocked() {
	if b.stop != nil {
		b.stop()
		b.stop = nil
	}
}
