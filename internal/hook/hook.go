// Package hook wraps the operating system's low-level input hooks behind a
// small Registrar interface. Callbacks receive a typed Event instead of raw
// hook structs, so decision logic can be exercised without a live hook.
package hook

import (
	"errors"
	"fmt"
	"log"
)

var (
	// ErrUnsupported is returned by Register on platforms without low-level hooks.
	ErrUnsupported = errors.New("low-level input hooks are not supported on this platform")

	// ErrAlreadyRegistered is returned when a hook of the same kind is already installed.
	ErrAlreadyRegistered = errors.New("hook of this kind is already registered")

	// ErrUnknownHandle is returned by Unregister for handles it never issued.
	ErrUnknownHandle = errors.New("unknown hook handle")
)

// Kind selects the class of input a hook observes.
type Kind int

const (
	Mouse Kind = iota
	Keyboard
)

func (k Kind) String() string {
	switch k {
	case Mouse:
		return "mouse"
	case Keyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Verdict is the outcome of a callback.
type Verdict int

const (
	PassThrough Verdict = iota
	Consume
)

// Window messages delivered as the wParam of low-level hooks.
const (
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105
	WM_MOUSEMOVE   = 0x0200
	WM_LBUTTONDOWN = 0x0201
	WM_LBUTTONUP   = 0x0202
	WM_RBUTTONDOWN = 0x0204
	WM_RBUTTONUP   = 0x0205
	WM_MBUTTONDOWN = 0x0207
	WM_MBUTTONUP   = 0x0208
	WM_MOUSEWHEEL  = 0x020A
)

// Point is a screen coordinate in physical pixels.
type Point struct {
	X, Y int32
}

// Event is the validated view of one low-level input event.
//
// Action is false for hook codes other than HC_ACTION; those must always be
// passed on. Valid is false when the event payload could not be read.
type Event struct {
	Kind    Kind
	Action  bool
	Valid   bool
	Message uint32

	// Mouse events.
	Point Point

	// Keyboard events.
	VKCode   uint32
	ScanCode uint32

	Flags uint32
}

// Callback decides what happens to one event. It runs on the hook thread and
// must return quickly.
type Callback func(Event) Verdict

// Handle identifies an installed hook. The zero Handle means "none".
type Handle uintptr

// Registrar installs and removes low-level hooks.
type Registrar interface {
	Register(kind Kind, cb Callback) (Handle, error)
	Unregister(h Handle) error
}

// Safe wraps cb so that a panic is reported as PassThrough.
func Safe(cb Callback, onPanic func(any)) Callback {
	return func(ev Event) (v Verdict) {
		defer func() {
			if rec := recover(); rec != nil {
				v = PassThrough
				if onPanic != nil {
					onPanic(rec)
				}
			}
		}()
		return cb(ev)
	}
}

// unhookWithFallback asks the hook's thread to remove it through stop. When
// that fails the hook may still be live in the OS, so it is logged and
// removed directly; the result is nil only if one of the two succeeded.
func unhookWithFallback(what string, stop, direct func() error) error {
	err := stop()
	if err == nil {
		return nil
	}
	log.Printf("[hook] %s: thread did not unhook (%v), removing it directly", what, err)
	if derr := direct(); derr != nil {
		log.Printf("[hook] %s leaked: %v", what, derr)
		return fmt.Errorf("%s: %w (direct unhook: %v)", what, err, derr)
	}
	log.Printf("[hook] %s removed directly", what)
	return nil
}
