//go:build !windows

package input

type unsupportedSender struct{}

// NewSender returns a Sender that inserts nothing on this platform.
func NewSender() Sender { return unsupportedSender{} }

func (unsupportedSender) Send([]KeyStroke) (int, error) { return 0, ErrUnsupported }
