package shortcuts

import (
	"errors"
	"fmt"

	"github.com/dylanchu/WinShortcuts/internal/hook"
)

// ErrClosed is returned when enabling a feature on a closed HookSet.
var ErrClosed = errors.New("hook set is closed")

// HookRegistrationError reports that the OS refused to install the hook a
// feature needs. The feature stays disabled.
type HookRegistrationError struct {
	Feature Feature
	Kind    hook.Kind
	Err     error
}

func (e *HookRegistrationError) Error() string {
	return fmt.Sprintf("enable %s: register %s hook: %v", e.Feature, e.Kind, e.Err)
}

func (e *HookRegistrationError) Unwrap() error {
	return e.Err
}
