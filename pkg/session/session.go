// pkg/session/session.go - the launch orchestrator.
//
// A Session is driven by a single loop: the terminal UI's update loop or a
// headless caller. Every state transition happens on that loop. The only
// work that may run elsewhere is a DownloadJob, whose results are applied
// back through ApplyProgress and FinishDownload.

package session

import (
	"fmt"
	"time"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/catalog"
	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/launcher"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

// Dependencies are the collaborators a session drives.
type Dependencies struct {
	Fetcher   download.Fetcher
	Launcher  launcher.Launcher
	Presenter Presenter

	Platform    platform.OS
	Arch        platform.Arch
	BaseURL     string
	DownloadDir string
	Countdown   time.Duration // zero means DefaultCountdown

	// Optional hooks.
	Clock     func() time.Time
	IsRunning func(executable string) bool
}

// DownloadTask is the installer download for the required version.
type DownloadTask struct {
	ID              build.ID
	SourceURL       string
	DestinationPath string
	Progress        float64
	State           DownloadState
}

// Snapshot is a read-only copy of session state for rendering.
type Snapshot struct {
	DocumentPath      string
	Required          build.ID
	RequiredInstalled bool
	Downloadable      bool
	Versions          []catalog.InstalledVersion
	Selected          int // -1 when nothing is installed
	State             State
	CountdownActive   bool
	CountdownLabel    string
	Download          *DownloadTask
	InstallReady      bool
	LastError         error
}

// Session owns all mutable launcher state for one document.
type Session struct {
	deps         Dependencies
	documentPath string
	required     build.ID
	catalog      *catalog.Catalog
	countdown    Countdown
	selected     int
	download     *DownloadTask
	state        State
	lastError    error
	installReady bool
}

// New builds a session once inspection and scanning are complete. When the
// required version is installed the countdown starts immediately and the
// required version is preselected.
func New(deps Dependencies, documentPath string, required build.ID, cat *catalog.Catalog) *Session {
	if deps.Presenter == nil {
		deps.Presenter = NoOpPresenter{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Countdown <= 0 {
		deps.Countdown = DefaultCountdown
	}
	if cat == nil {
		cat = catalog.New()
	}

	s := &Session{
		deps:         deps,
		documentPath: documentPath,
		required:     required,
		catalog:      cat,
		selected:     -1,
		state:        Initializing,
	}

	s.state = AwaitingUserChoice
	if idx := cat.IndexOf(required); idx >= 0 {
		s.selected = idx
		s.countdown = NewCountdown(deps.Countdown, deps.Clock())
		s.state = CountdownRunning
		deps.Presenter.Message(fmt.Sprintf("Opening with %s", required))
	} else {
		if cat.Len() > 0 {
			s.selected = 0
		}
		deps.Presenter.Message(fmt.Sprintf("%s is not installed", required))
	}
	logging.Info("Session ready", "document", documentPath, "required", required.String(),
		"installed", cat.Len(), "state", s.state.String())
	return s
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// LastError returns the most recent recoverable error.
func (s *Session) LastError() error {
	return s.lastError
}

// Snapshot copies the session state for rendering.
func (s *Session) Snapshot() Snapshot {
	now := s.deps.Clock()
	snap := Snapshot{
		DocumentPath:      s.documentPath,
		Required:          s.required,
		RequiredInstalled: s.catalog.Contains(s.required),
		Downloadable:      download.Downloadable(s.required),
		Versions:          s.catalog.Installed(),
		Selected:          s.selected,
		State:             s.state,
		CountdownActive:   s.countdown.Active(),
		CountdownLabel:    s.countdown.Label(now),
		InstallReady:      s.installReady,
		LastError:         s.lastError,
	}
	if s.download != nil {
		task := *s.download
		snap.Download = &task
	}
	return snap
}

// Interact records user input. It cancels the countdown permanently.
func (s *Session) Interact() {
	if !s.countdown.Active() {
		return
	}
	s.countdown.Cancel()
	if s.state == CountdownRunning {
		s.state = AwaitingUserChoice
	}
	logging.Debug("Countdown cancelled by user")
	s.deps.Presenter.Detail("Countdown cancelled")
}

// Tick advances the countdown and launches the selection when it expires.
func (s *Session) Tick(now time.Time) error {
	if s.state != CountdownRunning {
		return nil
	}
	if !s.countdown.Expired(now) {
		s.deps.Presenter.Detail(fmt.Sprintf("Launching in %s s", s.countdown.Label(now)))
		return nil
	}
	logging.Info("Countdown finished, launching")
	return s.Launch()
}

// MoveSelection moves the selection by step, wrapping around the installed
// versions. It does nothing when none are installed.
func (s *Session) MoveSelection(step int) {
	n := s.catalog.Len()
	if n == 0 {
		return
	}
	s.selected = ((s.selected+step)%n + n) % n
}

// Select picks an installed version by index.
func (s *Session) Select(index int) {
	if index >= 0 && index < s.catalog.Len() {
		s.selected = index
	}
}

// Selected returns the selected build.
func (s *Session) Selected() (build.ID, bool) {
	versions := s.catalog.Versions()
	if s.selected < 0 || s.selected >= len(versions) {
		return build.ID{}, false
	}
	return versions[s.selected], true
}

// Launch opens the document with the selected version. On failure the
// session returns to AwaitingUserChoice so another version can be tried.
func (s *Session) Launch() error {
	if s.busy() {
		return s.fail(&LaunchError{Err: ErrBusy})
	}
	s.countdown.Cancel()

	id, ok := s.Selected()
	if !ok {
		s.state = AwaitingUserChoice
		return s.fail(&LaunchError{Err: ErrNothingSelected})
	}
	v, ok := s.catalog.Lookup(id)
	if !ok {
		s.state = AwaitingUserChoice
		return s.fail(&LaunchError{Target: id.String(), Err: ErrNotInstalled})
	}

	s.state = Launching
	target := v.LaunchTarget()
	if s.deps.IsRunning != nil && s.deps.IsRunning(v.ExecutablePath) {
		logging.Warn("Selected version is already running", "executable", v.ExecutablePath)
	}
	s.deps.Presenter.Message(fmt.Sprintf("Launching %s", id))
	if err := s.deps.Launcher.Launch(target, s.documentPath); err != nil {
		s.state = AwaitingUserChoice
		return s.fail(&LaunchError{Target: target, Err: err})
	}
	logging.Info("Launched document", "build", id.String(), "target", target)
	s.state = Terminated
	return nil
}

// Install runs the downloaded installer and hands off to the OS.
func (s *Session) Install() error {
	if s.busy() {
		return s.fail(&InstallError{Err: ErrBusy})
	}
	if !s.installReady || s.download == nil || s.download.State != Completed {
		return s.fail(&InstallError{Err: ErrNoInstaller})
	}
	s.countdown.Cancel()

	path := s.download.DestinationPath
	s.state = Installing
	s.deps.Presenter.Message(fmt.Sprintf("Installing %s", s.download.ID))
	s.deps.Presenter.Percent(-1)
	if err := s.deps.Launcher.StartInstaller(path); err != nil {
		s.state = AwaitingUserChoice
		return s.fail(&InstallError{Path: path, Err: err})
	}
	logging.Info("Installer started", "installer", path)
	s.state = Terminated
	return nil
}

// Quit ends the session without launching.
func (s *Session) Quit() {
	logging.Debug("Session quit", "state", s.state.String())
	s.countdown.Cancel()
	s.state = Terminated
}

func (s *Session) busy() bool {
	switch s.state {
	case Downloading, Installing, Launching, Terminated:
		return true
	}
	return false
}

// fail records a recoverable error and forwards it to the presenter.
func (s *Session) fail(err error) error {
	s.lastError = err
	logging.Error("Operation failed", "error", err)
	s.deps.Presenter.Error(err)
	return err
}
