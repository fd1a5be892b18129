package main

import (
	"log"
	"os"
	"os/exec"

	"github.com/dylanchu/WinShortcuts/internal/startup"
)

// restartSelf starts a delayed copy of this process with the same arguments.
// The delay lets the current instance release its mutex, hooks and control
// port before the new one starts.
func restartSelf() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := delayedStart(startup.CommandLine(exe, os.Args[1:]...))
	if err := cmd.Start(); err != nil {
		return err
	}
	log.Printf("[boot] restart scheduled (pid %d)", cmd.Process.Pid)
	return cmd.Process.Release()
}

func delayedStart(cmdline string) *exec.Cmd {
	name, args := delayedArgs(cmdline)
	return exec.Command(name, args...)
}
