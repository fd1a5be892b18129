//go:build windows

package hook

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	WH_KEYBOARD_LL = 13
	WH_MOUSE_LL    = 14

	HC_ACTION = 0

	WM_QUIT = 0x0012
	WM_USER = 0x0400

	PM_NOREMOVE = 0x0000

	unhookTimeout = 2 * time.Second
)

type MSLLHOOKSTRUCT struct {
	Pt          Point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type MSG struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      Point
}

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessageW    = user32.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
)

// One callback slot per kind. The trampolines are created once: callback
// slots handed out by NewCallback are never released.
var (
	targets [2]atomic.Pointer[Callback]

	mouseTrampoline    = windows.NewCallback(lowLevelMouseProc)
	keyboardTrampoline = windows.NewCallback(lowLevelKeyboardProc)
)

func lowLevelMouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if dispatch(Mouse, mouseEvent(nCode, wParam, lParam)) == Consume {
		return 1
	}
	return callNext(nCode, wParam, lParam)
}

func lowLevelKeyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if dispatch(Keyboard, keyboardEvent(nCode, wParam, lParam)) == Consume {
		return 1
	}
	return callNext(nCode, wParam, lParam)
}

func mouseEvent(nCode int, wParam uintptr, lParam uintptr) Event {
	ev := Event{Kind: Mouse, Action: nCode == HC_ACTION, Message: uint32(wParam)}
	if ev.Action && lParam != 0 {
		ms := (*MSLLHOOKSTRUCT)(unsafe.Pointer(lParam))
		ev.Point = ms.Pt
		ev.Flags = ms.Flags
		ev.Valid = true
	}
	return ev
}

func keyboardEvent(nCode int, wParam uintptr, lParam uintptr) Event {
	ev := Event{Kind: Keyboard, Action: nCode == HC_ACTION, Message: uint32(wParam)}
	if ev.Action && lParam != 0 {
		kb := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
		ev.VKCode = kb.VkCode
		ev.ScanCode = kb.ScanCode
		ev.Flags = kb.Flags
		ev.Valid = true
	}
	return ev
}

func dispatch(kind Kind, ev Event) Verdict {
	cb := targets[kind].Load()
	if cb == nil {
		return PassThrough
	}
	return (*cb)(ev)
}

func callNext(nCode int, wParam uintptr, lParam uintptr) uintptr {
	r, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

type hookThread struct {
	kind Kind
	tid  uint32
	done chan error
}

type installResult struct {
	h   Handle
	tid uint32
	err error
}

// WindowsRegistrar runs every hook on its own OS-locked goroutine with a
// message pump; low-level hook callbacks are delivered to the installing
// thread only while it is pumping.
type WindowsRegistrar struct {
	mu      sync.Mutex
	threads map[Handle]*hookThread
}

func New() Registrar {
	return &WindowsRegistrar{threads: make(map[Handle]*hookThread)}
}

func (r *WindowsRegistrar) Register(kind Kind, cb Callback) (Handle, error) {
	var idHook int
	var proc uintptr
	switch kind {
	case Mouse:
		idHook, proc = WH_MOUSE_LL, mouseTrampoline
	case Keyboard:
		idHook, proc = WH_KEYBOARD_LL, keyboardTrampoline
	default:
		return 0, fmt.Errorf("register %s hook: unsupported kind", kind)
	}
	if cb == nil {
		return 0, fmt.Errorf("register %s hook: nil callback", kind)
	}

	safe := Safe(cb, func(rec any) {
		log.Printf("[hook] PANIC in %s callback: %v\n%s", kind, rec, string(debug.Stack()))
	})
	if !targets[kind].CompareAndSwap(nil, &safe) {
		return 0, ErrAlreadyRegistered
	}

	ready := make(chan installResult, 1)
	done := make(chan error, 1)
	go runHookThread(kind, idHook, proc, ready, done)

	res := <-ready
	if res.err != nil {
		targets[kind].Store(nil)
		return 0, res.err
	}

	r.mu.Lock()
	r.threads[res.h] = &hookThread{kind: kind, tid: res.tid, done: done}
	r.mu.Unlock()

	log.Printf("[hook] %s hook installed h=%#x tid=%d", kind, uintptr(res.h), res.tid)
	return res.h, nil
}

func (r *WindowsRegistrar) Unregister(h Handle) error {
	r.mu.Lock()
	t, ok := r.threads[h]
	delete(r.threads, h)
	r.mu.Unlock()
	if !ok {
		return ErrUnknownHandle
	}

	// Events still queued in the OS chain now fall through to CallNextHookEx.
	targets[t.kind].Store(nil)

	what := fmt.Sprintf("%s hook h=%#x tid=%d", t.kind, uintptr(h), t.tid)
	err := unhookWithFallback(what, t.stop, func() error {
		if ret, _, err := procUnhookWindowsHookEx.Call(uintptr(h)); ret == 0 {
			return callError("UnhookWindowsHookEx", err)
		}
		return nil
	})
	if err == nil {
		log.Printf("[hook] %s hook removed h=%#x", t.kind, uintptr(h))
	}
	return err
}

// stop posts WM_QUIT to the hook thread and waits for it to unhook.
func (t *hookThread) stop() error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(t.tid), WM_QUIT, 0, 0)
	if ret == 0 {
		return fmt.Errorf("PostThreadMessageW(tid=%d, WM_QUIT): %w", t.tid, err)
	}

	timer := time.NewTimer(unhookTimeout)
	defer timer.Stop()
	select {
	case err := <-t.done:
		return err
	case <-timer.C:
		return fmt.Errorf("%s hook thread tid=%d did not exit within %s", t.kind, t.tid, unhookTimeout)
	}
}

func runHookThread(kind Kind, idHook int, proc uintptr, ready chan<- installResult, done chan<- error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[hook] PANIC in %s hook thread: %v\n%s", kind, rec, string(debug.Stack()))
			select {
			case ready <- installResult{err: fmt.Errorf("panic in %s hook thread", kind)}:
			default:
			}
			select {
			case done <- fmt.Errorf("panic in %s hook thread", kind):
			default:
			}
		}
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := windows.GetCurrentThreadId()

	// Make sure the thread owns a message queue before anyone posts WM_QUIT to it.
	var m MSG
	_, _, _ = procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, WM_USER, WM_USER, PM_NOREMOVE)

	hMod, _, _ := procGetModuleHandleW.Call(0)
	h, _, err := procSetWindowsHookExW.Call(uintptr(idHook), proc, hMod, 0)
	if h == 0 {
		ready <- installResult{err: callError("SetWindowsHookExW", err)}
		return
	}
	ready <- installResult{h: Handle(h), tid: tid}

	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		rr := int32(r)
		if rr == -1 {
			log.Printf("[hook] %s thread: GetMessageW -> -1 (error)", kind)
			break
		}
		if rr == 0 {
			break
		}
		_, _, _ = procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		_, _, _ = procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}

	r, _, err := procUnhookWindowsHookEx.Call(h)
	if r == 0 {
		done <- callError("UnhookWindowsHookEx", err)
		return
	}
	done <- nil
}

func callError(name string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return fmt.Errorf("%s: %w", name, errno)
	}
	return fmt.Errorf("%s failed", name)
}
