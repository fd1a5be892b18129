package input

import "errors"

// ErrUnsupported is returned by senders on platforms without SendInput.
var ErrUnsupported = errors.New("key synthesis is not supported on this platform")

// Windows Virtual-Key codes used by the shortcuts.
const (
	VK_TAB  = 0x09
	VK_LWIN = 0x5B
	VK_RWIN = 0x5C
)

// KeySpec is a key as SendInput understands it.
//
// VK is the Windows Virtual-Key code.
// Scan is the hardware scan code (optional; can be 0).
// Ext marks extended keys (the Windows keys, arrows, insert/delete, etc.).
type KeySpec struct {
	VK   uint16 `json:"vk"`
	Scan uint16 `json:"scan,omitempty"`
	Ext  bool   `json:"ext,omitempty"`
}

// KeyStroke is one synthetic key transition.
type KeyStroke struct {
	Key KeySpec
	Up  bool
}

func Down(k KeySpec) KeyStroke { return KeyStroke{Key: k} }
func Up(k KeySpec) KeyStroke   { return KeyStroke{Key: k, Up: true} }

// Sender injects strokes into the input stream as one uninterrupted batch.
// It returns how many strokes were actually inserted.
type Sender interface {
	Send(strokes []KeyStroke) (int, error)
}
