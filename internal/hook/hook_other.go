//go:build !windows

package hook

type unsupportedRegistrar struct{}

// New returns a Registrar that refuses every hook on this platform.
func New() Registrar { return unsupportedRegistrar{} }

func (unsupportedRegistrar) Register(Kind, Callback) (Handle, error) { return 0, ErrUnsupported }

func (unsupportedRegistrar) Unregister(Handle) error { return ErrUnknownHandle }
