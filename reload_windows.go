//go:build windows

package main

// SIGUSR1 does not exist on Windows
func setupReloadSignal(rebuild func(string)) func() {
	return func() {}
}
