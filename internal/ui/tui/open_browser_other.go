//go:build !windows && !darwin

package tui

import "os/exec"

// openInBrowser opens url through xdg-open
func openInBrowser(url string) error {
	return exec.Command("xdg-open", url).Start()
}
