package notify

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/dylanchu/WinShortcuts/internal/hook"
	"github.com/dylanchu/WinShortcuts/internal/shortcuts"
)

const title = "WinShortcuts"

// Notifier raises desktop notifications for problems the user should see.
type Notifier struct {
	mu      sync.Mutex
	enabled bool
	send    func(title, message string) error
}

func New(enabled bool) *Notifier {
	return &Notifier{
		enabled: enabled,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	n.enabled = enabled
	n.mu.Unlock()
}

func (n *Notifier) Notify(message string) error {
	n.mu.Lock()
	enabled, send := n.enabled, n.send
	n.mu.Unlock()
	if !enabled {
		return nil
	}
	return send(title, message)
}

// HookFailed reports an enable error. Errors other than hook registration
// failures are only logged.
func (n *Notifier) HookFailed(err error) {
	if err == nil {
		return
	}
	var regErr *shortcuts.HookRegistrationError
	if !errors.As(err, &regErr) {
		log.Printf("[notify] not notifying: %v", err)
		return
	}
	msg := fmt.Sprintf("Could not enable %s: %v", label(regErr.Feature), regErr.Err)
	if errors.Is(err, hook.ErrUnsupported) {
		msg = fmt.Sprintf("%s needs Windows low-level input hooks.", label(regErr.Feature))
	}
	if err := n.Notify(msg); err != nil {
		log.Printf("[notify] notification failed: %v", err)
	}
}

func label(f shortcuts.Feature) string {
	switch f {
	case shortcuts.HotCorner:
		return "Hot Corner"
	case shortcuts.LWinBlocker:
		return "Block LWin"
	}
	return f.String()
}
