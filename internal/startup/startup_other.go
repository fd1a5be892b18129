//go:build !windows

package startup

func SetEnabled(appName string, enabled bool, args ...string) error { return ErrUnsupported }

func IsEnabled(appName string) (bool, string, error) { return false, "", ErrUnsupported }
