//go:build !windows

package cmd

// ensureElevated is a no-op outside Windows. Unix file permissions already
// decide what the process may touch, so there is no separate token to check.
func ensureElevated() error {
	return nil
}
