//go:build windows

package input

import (
	"testing"
	"unsafe"
)

func TestInputLayoutMatchesABI(t *testing.T) {
	want := uintptr(28)
	if unsafe.Sizeof(uintptr(0)) == 8 {
		want = 40
	}
	if got := unsafe.Sizeof(INPUT{}); got != want {
		t.Errorf("sizeof(INPUT) = %d, want %d", got, want)
	}
	if off := unsafe.Offsetof(INPUT{}.Data); off != unsafe.Sizeof(uintptr(0)) {
		t.Errorf("union offset = %d, want %d", off, unsafe.Sizeof(uintptr(0)))
	}
	if unsafe.Sizeof(KEYBDINPUT{}) > unsafe.Sizeof(INPUT{}.Data) {
		t.Errorf("KEYBDINPUT (%d bytes) does not fit the union blob (%d bytes)",
			unsafe.Sizeof(KEYBDINPUT{}), unsafe.Sizeof(INPUT{}.Data))
	}
}

func TestKeyInput(t *testing.T) {
	in := keyInput(KeyStroke{Key: KeySpec{VK: 0x5B, Scan: 0x5B, Ext: true}, Up: true})
	if in.Type != INPUT_KEYBOARD {
		t.Fatalf("Type = %d, want INPUT_KEYBOARD", in.Type)
	}
	ki := (*KEYBDINPUT)(unsafe.Pointer(&in.Data[0]))
	if ki.WVk != 0x5B || ki.WScan != 0x5B {
		t.Errorf("vk/scan = %#x/%#x", ki.WVk, ki.WScan)
	}
	if ki.DwFlags != KEYEVENTF_EXTENDEDKEY|KEYEVENTF_KEYUP {
		t.Errorf("flags = %#x", ki.DwFlags)
	}
}
