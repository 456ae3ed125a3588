// pkg/session/errors.go - recoverable errors surfaced to the presentation layer.

package session

import (
	"errors"
	"fmt"
)

var (
	ErrNothingSelected  = errors.New("no version selected")
	ErrNotInstalled     = errors.New("selected version is not installed")
	ErrBusy             = errors.New("another operation is in progress")
	ErrAlreadyInstalled = errors.New("required version is already installed")
	ErrNotDownloadable  = errors.New("version is too old to download with this launcher")
	ErrNoInstaller      = errors.New("no completed download to install")
)

// DownloadError is a failed or refused installer download.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("download failed: %v", e.Err)
	}
	return fmt.Sprintf("download %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// InstallError is a failure to start the installer.
type InstallError struct {
	Path string
	Err  error
}

func (e *InstallError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("install failed: %v", e.Err)
	}
	return fmt.Sprintf("install %s failed: %v", e.Path, e.Err)
}

func (e *InstallError) Unwrap() error { return e.Err }

// LaunchError is a failure to open the document.
type LaunchError struct {
	Target string
	Err    error
}

func (e *LaunchError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("launch failed: %v", e.Err)
	}
	return fmt.Sprintf("launch %s failed: %v", e.Target, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }
