//go:build windows

package scanner

import (
	"io/fs"
	"sync"
)

type platformRootInfo struct{}

func getPlatformRootInfo(path string) platformRootInfo {
	return platformRootInfo{}
}

// shouldSkipDir never skips on Windows: drives are separate roots
func shouldSkipDir(d fs.DirEntry, rootInfo platformRootInfo, seen *sync.Map) bool {
	return false
}
