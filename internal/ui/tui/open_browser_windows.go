//go:build windows

package tui

import "os/exec"

// openInBrowser opens url with the default handler
func openInBrowser(url string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
}
