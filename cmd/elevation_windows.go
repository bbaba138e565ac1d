//go:build windows

package cmd

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// ensureElevated fails fast when the process lacks administrator rights.
// Closing other users' Edge processes and copying locked profile databases
// both need an elevated token, so there is no point starting without one.
func ensureElevated() error {
	if windows.GetCurrentProcessToken().IsElevated() {
		return nil
	}
	return fmt.Errorf("administrator rights required; rerun from an elevated prompt")
}
