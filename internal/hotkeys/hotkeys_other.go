//go:build !windows

package hotkeys

func Register(c Combo, fn func()) (stop func(), err error) { return nil, ErrUnsupported }
