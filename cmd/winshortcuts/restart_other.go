//go:build !windows

package main

func delayedArgs(cmdline string) (string, []string) {
	return "/bin/sh", []string{"-c", "sleep 1; exec " + cmdline}
}
