// Package hotkeys parses and registers system-wide key combinations such as
// "ctrl+alt+w".
package hotkeys

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnsupported = errors.New("global hotkeys are not supported on this platform")
	ErrInvalid     = errors.New("invalid hotkey")
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModWin
)

var modNames = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModWin, "win"},
}

var modAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
	"win":     ModWin,
	"super":   ModWin,
}

// Combo is a modifier set plus one Windows virtual-key code.
type Combo struct {
	Mods Modifier
	VK   uint16
}

var namedKeys = map[string]uint16{
	"space":    0x20,
	"tab":      0x09,
	"enter":    0x0D,
	"return":   0x0D,
	"esc":      0x1B,
	"escape":   0x1B,
	"insert":   0x2D,
	"delete":   0x2E,
	"home":     0x24,
	"end":      0x23,
	"pageup":   0x21,
	"pagedown": 0x22,
	"left":     0x25,
	"up":       0x26,
	"right":    0x27,
	"down":     0x28,
}

func keyVK(name string) (uint16, bool) {
	if vk, ok := namedKeys[name]; ok {
		return vk, true
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return uint16(c - 'a' + 'A'), true
		case c >= '0' && c <= '9':
			return uint16(c), true
		}
	}
	if len(name) >= 2 && name[0] == 'f' {
		n, err := strconv.Atoi(name[1:])
		if err == nil && n >= 1 && n <= 24 && strconv.Itoa(n) == name[1:] {
			return uint16(0x70 + n - 1), true
		}
	}
	return 0, false
}

func keyName(vk uint16) string {
	switch {
	case vk >= 'A' && vk <= 'Z':
		return string(rune(vk - 'A' + 'a'))
	case vk >= '0' && vk <= '9':
		return string(rune(vk))
	case vk >= 0x70 && vk <= 0x87:
		return fmt.Sprintf("f%d", vk-0x70+1)
	}
	best := ""
	for name, v := range namedKeys {
		// prefer the shortest alias for a stable result
		if v == vk && (best == "" || len(name) < len(best) || (len(name) == len(best) && name < best)) {
			best = name
		}
	}
	if best != "" {
		return best
	}
	return fmt.Sprintf("vk%#02x", vk)
}

// Parse reads a combination like "Ctrl+Alt+W". At least one modifier is
// required so a plain key is never taken away from other programs.
func Parse(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) < 2 {
		return c, fmt.Errorf("%w %q: need modifier+key", ErrInvalid, s)
	}
	for _, p := range parts[:len(parts)-1] {
		m, ok := modAliases[strings.TrimSpace(p)]
		if !ok {
			return c, fmt.Errorf("%w %q: unknown modifier %q", ErrInvalid, s, p)
		}
		if c.Mods&m != 0 {
			return c, fmt.Errorf("%w %q: repeated modifier %q", ErrInvalid, s, p)
		}
		c.Mods |= m
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	vk, ok := keyVK(last)
	if !ok {
		return c, fmt.Errorf("%w %q: unknown key %q", ErrInvalid, s, last)
	}
	c.VK = vk
	return c, nil
}

// String renders c in canonical form, e.g. "ctrl+alt+w".
func (c Combo) String() string {
	var b strings.Builder
	for _, mn := range modNames {
		if c.Mods&mn.mod != 0 {
			b.WriteString(mn.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(keyName(c.VK))
	return b.String()
}
