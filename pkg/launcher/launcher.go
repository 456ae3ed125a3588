// pkg/launcher/launcher.go - hands documents and installers off to the operating system.

package launcher

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

// execCommand is abstracted for testing
var execCommand = exec.Command

// Launcher opens documents and starts installers.
type Launcher interface {
	// Launch opens document with target, an executable or app bundle.
	Launch(target, document string) error
	// StartInstaller runs a downloaded installer.
	StartInstaller(path string) error
}

// ProcessLauncher launches child processes for the given platform.
type ProcessLauncher struct {
	OS platform.OS
}

// New returns a launcher for the running platform.
func New() *ProcessLauncher {
	return &ProcessLauncher{OS: platform.Current()}
}

// Launch implements Launcher. On macOS the bundle is opened through
// LaunchServices; elsewhere the executable is started detached.
func (l *ProcessLauncher) Launch(target, document string) error {
	if target == "" {
		return fmt.Errorf("no launch target")
	}
	if l.OS == platform.MacOS {
		logging.Info("Opening document with bundle", "bundle", target, "document", document)
		return runCMD("open", "-a", target, document)
	}

	logging.Info("Starting application", "executable", target, "document", document)
	cmd := execCommand(target, document)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", filepath.Base(target), err)
	}
	logging.Debug("Application started", "pid", cmd.Process.Pid)
	return cmd.Process.Release()
}

// StartInstaller implements Launcher. The Windows installer is awaited; the
// macOS disk image is only mounted.
func (l *ProcessLauncher) StartInstaller(path string) error {
	switch l.OS {
	case platform.Windows:
		logging.Info("Running installer", "installer", path)
		return runCMD("cmd", "/C", "start", "", "/WAIT", path)
	case platform.MacOS:
		logging.Info("Opening disk image", "image", path)
		return runCMD("open", path)
	default:
		return fmt.Errorf("installing is not supported on %s", l.OS)
	}
}

// runCMD executes a command and waits for it, folding stderr into the error.
func runCMD(command string, arguments ...string) error {
	cmd := execCommand(command, arguments...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command execution failed: %w | stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// IsRunning reports whether a process with the given executable path is
// already running.
func IsRunning(executable string) bool {
	procs, err := process.Processes()
	if err != nil {
		logging.Debug("Failed to get process list", "error", err)
		return false
	}
	for _, proc := range procs {
		exe, err := proc.Exe()
		if err != nil {
			continue
		}
		if strings.EqualFold(filepath.Clean(exe), filepath.Clean(executable)) {
			logging.Debug("Found running process", "executable", exe, "pid", proc.Pid)
			return true
		}
	}
	return false
}
