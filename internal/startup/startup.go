// Package startup manages the per-user "run at logon" entry.
package startup

import (
	"errors"
	"strings"
)

// ErrUnsupported is returned on platforms without an HKCU Run key.
var ErrUnsupported = errors.New("autostart is not supported on this platform")

// CommandLine quotes exe and appends the trimmed, non-empty args.
func CommandLine(exe string, args ...string) string {
	var b strings.Builder
	b.WriteString(`"`)
	b.WriteString(strings.TrimSpace(exe))
	b.WriteString(`"`)
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		b.WriteByte(' ')
		if strings.ContainsAny(a, " \t") {
			b.WriteString(`"` + a + `"`)
		} else {
			b.WriteString(a)
		}
	}
	return b.String()
}
