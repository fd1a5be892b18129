// Package shortcuts owns the two global input shortcuts: the top-left hot
// corner that opens Task View and the left Windows key blocker.
package shortcuts

import (
	"fmt"
	"log"
	"sync"

	"github.com/dylanchu/WinShortcuts/internal/hook"
)

// TaskViewer fires the Task View chord. Implementations must not block.
type TaskViewer interface {
	TaskView()
}

// HookSet holds at most one mouse hook (hot corner) and one keyboard hook
// (LWin blocker). A feature is enabled exactly when its handle is non-zero;
// both handles are guarded by one mutex.
type HookSet struct {
	hooks      hook.Registrar
	mouseCB    hook.Callback
	keyboardCB hook.Callback

	mu       sync.Mutex
	mouse    hook.Handle
	keyboard hook.Handle
	closed   bool

	notifyMu  sync.Mutex
	observers []func(State)
}

// New creates the set with the default policy: hot corner on, LWin blocker
// off. The set is always returned; the error is the hot corner registration
// failure, if any.
func New(hooks hook.Registrar, synth TaskViewer) (*HookSet, error) {
	s := &HookSet{
		hooks:      hooks,
		mouseCB:    mouseCallback(synth),
		keyboardCB: keyboardCallback,
	}
	err := s.EnableHotCorner()
	return s, err
}

func (s *HookSet) EnableHotCorner() error   { return s.Set(HotCorner, true) }
func (s *HookSet) DisableHotCorner()        { _ = s.Set(HotCorner, false) }
func (s *HookSet) HotCornerEnabled() bool   { return s.Enabled(HotCorner) }
func (s *HookSet) EnableLWinBlocker() error { return s.Set(LWinBlocker, true) }
func (s *HookSet) DisableLWinBlocker()      { _ = s.Set(LWinBlocker, false) }
func (s *HookSet) LWinBlockerEnabled() bool { return s.Enabled(LWinBlocker) }

// Enabled reports whether f's hook is registered.
func (s *HookSet) Enabled(f Feature) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, _, _ := s.slot(f)
	return h != nil && *h != 0
}

// State returns both toggles as one consistent snapshot.
func (s *HookSet) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Set enables or disables f. Both directions are no-ops when f is already in
// the requested state. Disabling never fails.
func (s *HookSet) Set(f Feature, on bool) error {
	s.mu.Lock()
	var changed bool
	var err error
	if on {
		changed, err = s.enableLocked(f)
	} else {
		changed = s.disableLocked(f)
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return err
}

// Toggle flips f and returns its new state.
func (s *HookSet) Toggle(f Feature) (bool, error) {
	s.mu.Lock()
	h, _, _ := s.slot(f)
	if h == nil {
		s.mu.Unlock()
		return false, fmt.Errorf("toggle %s: unknown feature", f)
	}
	on := *h == 0
	var changed bool
	var err error
	if on {
		changed, err = s.enableLocked(f)
	} else {
		changed = s.disableLocked(f)
	}
	now := *h != 0
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return now, err
}

// OnChange registers fn to be called with the latest state after every
// transition. fn runs on the goroutine that caused the change and must not
// toggle features itself.
func (s *HookSet) OnChange(fn func(State)) {
	s.notifyMu.Lock()
	s.observers = append(s.observers, fn)
	s.notifyMu.Unlock()
}

// Close removes every registered hook. Later enables fail with ErrClosed.
// Calling Close more than once is harmless.
func (s *HookSet) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	changed := s.disableLocked(HotCorner)
	changed = s.disableLocked(LWinBlocker) || changed
	s.mu.Unlock()

	log.Printf("[hooks] closed")
	if changed {
		s.notify()
	}
}

func (s *HookSet) slot(f Feature) (*hook.Handle, hook.Kind, hook.Callback) {
	switch f {
	case HotCorner:
		return &s.mouse, hook.Mouse, s.mouseCB
	case LWinBlocker:
		return &s.keyboard, hook.Keyboard, s.keyboardCB
	}
	return nil, 0, nil
}

func (s *HookSet) stateLocked() State {
	return State{HotCorner: s.mouse != 0, LWinBlocker: s.keyboard != 0}
}

func (s *HookSet) enableLocked(f Feature) (bool, error) {
	h, kind, cb := s.slot(f)
	if h == nil {
		return false, fmt.Errorf("enable %s: unknown feature", f)
	}
	if *h != 0 {
		return false, nil
	}
	if s.closed {
		return false, ErrClosed
	}

	handle, err := s.hooks.Register(kind, cb)
	if err != nil {
		log.Printf("[hooks] enable %s failed: %v", f, err)
		return false, &HookRegistrationError{Feature: f, Kind: kind, Err: err}
	}
	if handle == 0 {
		log.Printf("[hooks] enable %s: registrar returned an empty handle", f)
		return false, &HookRegistrationError{Feature: f, Kind: kind, Err: hook.ErrUnknownHandle}
	}
	*h = handle
	log.Printf("[hooks] %s enabled", f)
	return true, nil
}

// disableLocked clears f's handle even when the OS refuses to unhook, so the
// feature can never get stuck enabled.
func (s *HookSet) disableLocked(f Feature) bool {
	h, _, _ := s.slot(f)
	if h == nil || *h == 0 {
		return false
	}
	if err := s.hooks.Unregister(*h); err != nil {
		log.Printf("[hooks] disable %s: unregister failed (ignored): %v", f, err)
	}
	*h = 0
	log.Printf("[hooks] %s disabled", f)
	return true
}

func (s *HookSet) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if len(s.observers) == 0 {
		return
	}
	st := s.State()
	for _, fn := range s.observers {
		fn(st)
	}
}
