// pkg/platform/platform.go - operating system and machine architecture detection.

package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
)

// OS identifies the host family the launcher runs on.
type OS string

const (
	Windows OS = "windows"
	MacOS   OS = "darwin"
	Other   OS = "other"
)

// Arch is the architecture suffix used in download file names.
// It is empty on Windows, where installers are not split by architecture.
type Arch string

const (
	ArchNone  Arch = ""
	ArchIntel Arch = "intel"
	ArchARM64 Arch = "arm64"
)

// Current returns the OS of the running process.
func Current() OS {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a runtime.GOOS value onto an OS.
func FromGOOS(goos string) OS {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	default:
		return Other
	}
}

// NormalizeArch maps a machine string (uname -m, GOARCH) onto a download
// architecture. Unknown machines default to intel.
func NormalizeArch(machine string) Arch {
	switch strings.ToLower(strings.TrimSpace(machine)) {
	case "arm64", "aarch64":
		return ArchARM64
	case "x86_64", "amd64":
		return ArchIntel
	default:
		logging.Warn("Unknown machine architecture, defaulting to intel", "machine", machine)
		return ArchIntel
	}
}

// DetectArch returns the download architecture for this machine.
// Windows always yields ArchNone.
func DetectArch(p OS) Arch {
	if p == Windows {
		return ArchNone
	}
	machine, err := host.KernelArch()
	if err != nil || machine == "" {
		logging.Debug("Kernel architecture unavailable, using GOARCH", "error", err, "goarch", runtime.GOARCH)
		machine = runtime.GOARCH
	}
	return NormalizeArch(machine)
}

// IsAppBundle reports whether the launcher itself runs from inside a macOS
// application bundle. Finder launches such bundles with "/" as cwd.
func IsAppBundle() bool {
	exe, err := os.Executable()
	if err == nil && strings.Contains(filepath.ToSlash(exe), "/Contents/MacOS") {
		return true
	}
	wd, err := os.Getwd()
	return err == nil && wd == "/"
}

// ExecutableDir returns the directory holding the launcher binary, falling
// back to the working directory.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
