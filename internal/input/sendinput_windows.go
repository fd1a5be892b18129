//go:build windows

package input

import (
	"errors"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	INPUT_KEYBOARD = 1

	KEYEVENTF_EXTENDEDKEY = 0x0001
	KEYEVENTF_KEYUP       = 0x0002
)

type KEYBDINPUT struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// WindowsSender injects keystrokes with SendInput. A single SendInput call is
// never interleaved with other injected input.
type WindowsSender struct{}

func NewSender() Sender { return WindowsSender{} }

func (WindowsSender) Send(strokes []KeyStroke) (int, error) {
	if len(strokes) == 0 {
		return 0, nil
	}
	inputs := make([]INPUT, len(strokes))
	for i, st := range strokes {
		inputs[i] = keyInput(st)
	}
	r1, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	n := int(uint32(r1))
	if n < len(inputs) {
		var errno syscall.Errno
		if errors.As(err, &errno) && errno != 0 {
			return n, fmt.Errorf("SendInput: %w", errno)
		}
		return n, errors.New("SendInput: input blocked")
	}
	return n, nil
}

func keyInput(st KeyStroke) INPUT {
	var in INPUT
	in.Type = INPUT_KEYBOARD
	ki := (*KEYBDINPUT)(unsafe.Pointer(&in.Data[0]))
	ki.WVk = st.Key.VK
	ki.WScan = st.Key.Scan

	var flags uint32
	if st.Key.Ext {
		flags |= KEYEVENTF_EXTENDEDKEY
	}
	if st.Up {
		flags |= KEYEVENTF_KEYUP
	}
	ki.DwFlags = flags
	return in
}
