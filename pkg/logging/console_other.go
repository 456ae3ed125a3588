//go:build !windows

// pkg/logging/console_other.go - ANSI color is always available off Windows.

package logging

var vtEnabled = true

func enableColors() {}
