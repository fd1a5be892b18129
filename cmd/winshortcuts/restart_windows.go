//go:build windows

package main

func delayedArgs(cmdline string) (string, []string) {
	return "cmd.exe", []string{"/C", "timeout /T 1 /NOBREAK >NUL & " + cmdline}
}
