// Package hooktest provides an in-memory hook.Registrar that records every
// call and lets tests push events through the registered callbacks.
package hooktest

import (
	"sync"

	"github.com/dylanchu/WinShortcuts/internal/hook"
)

// Call is one recorded Register or Unregister.
type Call struct {
	Op     string // "register" | "unregister"
	Kind   hook.Kind
	Handle hook.Handle
	Err    error
}

// Registrar is a fake hook.Registrar. The zero value is ready to use.
type Registrar struct {
	mu         sync.Mutex
	next       hook.Handle
	active     map[hook.Handle]installed
	calls      []Call
	failReg    map[hook.Kind]error
	failUnhook error
}

type installed struct {
	kind hook.Kind
	cb   hook.Callback
}

var _ hook.Registrar = (*Registrar)(nil)

// FailRegister makes every following Register of kind fail with err.
// A nil err clears the failure.
func (r *Registrar) FailRegister(kind hook.Kind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReg == nil {
		r.failReg = make(map[hook.Kind]error)
	}
	if err == nil {
		delete(r.failReg, kind)
		return
	}
	r.failReg[kind] = err
}

// FailUnregister makes Unregister report err. The hook is still removed,
// matching an OS call that errors after the handle is gone.
func (r *Registrar) FailUnregister(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failUnhook = err
}

func (r *Registrar) Register(kind hook.Kind, cb hook.Callback) (hook.Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failReg[kind]; err != nil {
		r.calls = append(r.calls, Call{Op: "register", Kind: kind, Err: err})
		return 0, err
	}
	if r.active == nil {
		r.active = make(map[hook.Handle]installed)
	}
	r.next++
	h := r.next
	r.active[h] = installed{kind: kind, cb: cb}
	r.calls = append(r.calls, Call{Op: "register", Kind: kind, Handle: h})
	return h, nil
}

func (r *Registrar) Unregister(h hook.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.active[h]
	if !ok {
		r.calls = append(r.calls, Call{Op: "unregister", Handle: h, Err: hook.ErrUnknownHandle})
		return hook.ErrUnknownHandle
	}
	delete(r.active, h)
	r.calls = append(r.calls, Call{Op: "unregister", Kind: in.kind, Handle: h, Err: r.failUnhook})
	return r.failUnhook
}

// Active reports how many hooks of kind are currently registered.
func (r *Registrar) Active(kind hook.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, in := range r.active {
		if in.kind == kind {
			n++
		}
	}
	return n
}

// Calls returns a copy of the call log.
func (r *Registrar) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Dispatch delivers ev to every registered hook of ev.Kind, in registration
// order, stopping at the first Consume. With no hook installed the event
// passes through, as it would in the OS chain.
func (r *Registrar) Dispatch(ev hook.Event) hook.Verdict {
	r.mu.Lock()
	var cbs []hook.Callback
	for h := hook.Handle(1); h <= r.next; h++ {
		if in, ok := r.active[h]; ok && in.kind == ev.Kind {
			cbs = append(cbs, in.cb)
		}
	}
	r.mu.Unlock()

	for _, cb := range cbs {
		if cb(ev) == hook.Consume {
			return hook.Consume
		}
	}
	return hook.PassThrough
}
