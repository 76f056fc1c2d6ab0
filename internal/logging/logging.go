package logging

import (
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// EnvDebug enables debug logging when set to any non-empty value
const EnvDebug = "WALLETMAP_DEBUG"

// The loggers are created once and only reconfigured in place, so they may be
// used from any goroutine while Configure or SetOutput runs.
var (
	Debug  = log.New(io.Discard, "", 0)
	Render = log.New(io.Discard, "", 0)
	Server = log.New(io.Discard, "", 0)
	// Warn is always enabled and writes to stderr
	Warn = log.New(os.Stderr, "[WARN] ", log.Ldate|log.Ltime)

	enabled atomic.Bool

	mu      sync.Mutex
	logFile *os.File
)

func init() {
	Configure(os.Getenv(EnvDebug) != "", "debug.log")
}

// Enabled reports whether the debug loggers write anywhere
func Enabled() bool {
	return enabled.Load()
}

// Configure switches the debug loggers on or off. Enabled loggers write to
// path, or to stderr when path is empty or cannot be opened.
func Configure(on bool, path string) {
	mu.Lock()
	defer mu.Unlock()

	old := logFile
	logFile = nil
	// Close only after the loggers have moved off the old file
	defer func() {
		if old != nil {
			old.Close()
		}
	}()

	if !on {
		enabled.Store(false)
		setAll(io.Discard, 0, "", "", "")
		return
	}

	if path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			logFile = f
			setAll(f, log.Lmicroseconds, "[DEBUG] ", "[RENDER] ", "[SERVER] ")
			enabled.Store(true)
			return
		}
	}

	// Fallback to stderr if we can't open the file
	setAll(os.Stderr, log.Ldate|log.Ltime, "[DEBUG] ", "[RENDER] ", "[SERVER] ")
	enabled.Store(true)
}

// SetOutput redirects every logger, Warn included, to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	old := logFile
	logFile = nil
	setAll(w, 0, "[DEBUG] ", "[RENDER] ", "[SERVER] ")
	Warn.SetOutput(w)
	Warn.SetFlags(0)
	enabled.Store(true)
	if old != nil {
		old.Close()
	}
}

func setAll(w io.Writer, flags int, debug, render, server string) {
	for _, l := range []struct {
		logger *log.Logger
		prefix string
	}{{Debug, debug}, {Render, render}, {Server, server}} {
		l.logger.SetOutput(w)
		l.logger.SetFlags(flags)
		l.logger.SetPrefix(l.prefix)
	}
}
