//go:build windows

// pkg/logging/console_windows.go - enables ANSI color on the Windows console.

package logging

import (
	"os"

	"golang.org/x/sys/windows"
)

var vtEnabled bool

// enableColors turns on virtual terminal processing so ANSI colors render
// in the Windows console.
func enableColors() {
	handle := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	vtEnabled = windows.SetConsoleMode(handle, mode) == nil
}
