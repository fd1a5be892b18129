//go:build windows

package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"golang.design/x/hotkey"
)

var modMap = []struct {
	mod Modifier
	hk  hotkey.Modifier
}{
	{ModCtrl, hotkey.ModCtrl},
	{ModAlt, hotkey.ModAlt},
	{ModShift, hotkey.ModShift},
	{ModWin, hotkey.ModWin},
}

// Register installs c system-wide and calls fn on every key-down until the
// returned stop func is called.
func Register(c Combo, fn func()) (stop func(), err error) {
	var mods []hotkey.Modifier
	for _, m := range modMap {
		if c.Mods&m.mod != 0 {
			mods = append(mods, m.hk)
		}
	}
	hk := hotkey.New(mods, hotkey.Key(c.VK))
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("register hotkey %s: %w", c, err)
	}

	done := make(chan struct{})
	go func() {
		keydown := hk.Keydown()
		for {
			select {
			case <-done:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			if err := hk.Unregister(); err != nil {
				log.Printf("[hotkey] unregister %s: %v", c, err)
			}
		})
	}, nil
}
