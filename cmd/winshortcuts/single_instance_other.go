//go:build !windows

package main

func ensureSingleInstance(name string) bool { return true }
