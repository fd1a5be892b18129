//go:build windows

package main

import (
	"errors"
	"log"

	"golang.org/x/sys/windows"
)

// ensureSingleInstance holds a named mutex for the life of the process so a
// second copy never installs a second set of global hooks.
func ensureSingleInstance(name string) bool {
	n, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return true
	}
	_, err = windows.CreateMutex(nil, true, n)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		return false
	}
	if err != nil {
		log.Printf("[boot] CreateMutex(%s): %v (continuing)", name, err)
	}
	return true
}
