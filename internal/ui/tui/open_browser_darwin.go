//go:build darwin

package tui

import "os/exec"

// openInBrowser opens url with the default handler
func openInBrowser(url string) error {
	return exec.Command("open", url).Start()
}
