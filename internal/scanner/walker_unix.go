//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// platformRootInfo holds platform-specific root information
type platformRootInfo struct {
	dev uint64
}

// getPlatformRootInfo returns platform-specific info about the root path
func getPlatformRootInfo(path string) platformRootInfo {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return platformRootInfo{}
	}
	return platformRootInfo{dev: uint64(stat.Dev)}
}

// shouldSkipDir skips mount points and directories already visited
// through another link
func shouldSkipDir(d fs.DirEntry, rootInfo platformRootInfo, seen *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}

	if uint64(stat.Dev) != rootInfo.dev {
		return true
	}

	if _, exists := seen.LoadOrStore(stat.Ino, true); exists {
		return true
	}

	return false
}
