package session

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/catalog"
	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
)

type fakeLauncher struct {
	launchErr  error
	installErr error
	launched   [][2]string
	installers []string
}

func (f *fakeLauncher) Launch(target, document string) error {
	f.launched = append(f.launched, [2]string{target, document})
	return f.launchErr
}

func (f *fakeLauncher) StartInstaller(path string) error {
	f.installers = append(f.installers, path)
	return f.installErr
}

type fakeFetcher struct {
	steps [][3]int64
	err   error
	url   string
	dest  string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, dest string, onProgress download.ProgressFunc) error {
	f.url, f.dest = url, dest
	for _, s := range f.steps {
		onProgress(s[0], s[1], s[2])
	}
	return f.err
}

type recordingPresenter struct {
	messages []string
	percents []int
	errs     []error
}

func (p *recordingPresenter) Message(txt string) { p.messages = append(p.messages, txt) }
func (p *recordingPresenter) Detail(string)      {}
func (p *recordingPresenter) Percent(pct int)    { p.percents = append(p.percents, pct) }
func (p *recordingPresenter) Error(err error)    { p.errs = append(p.errs, err) }

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func td(year, b int) build.ID {
	return build.ID{Product: "TouchDesigner", Year: year, Build: b}
}

func newCatalog(ids ...build.ID) *catalog.Catalog {
	c := catalog.New()
	for _, id := range ids {
		c.Add(catalog.InstalledVersion{ID: id, ExecutablePath: "/td/" + id.String() + "/TouchDesigner"})
	}
	return c
}

type fixture struct {
	launcher  *fakeLauncher
	fetcher   *fakeFetcher
	presenter *recordingPresenter
	clock     *clock
	deps      Dependencies
}

func newFixture(p platform.OS) *fixture {
	f := &fixture{
		launcher:  &fakeLauncher{},
		fetcher:   &fakeFetcher{},
		presenter: &recordingPresenter{},
		clock:     &clock{now: time.Unix(1700000000, 0)},
	}
	f.deps = Dependencies{
		Fetcher:     f.fetcher,
		Launcher:    f.launcher,
		Presenter:   f.presenter,
		Platform:    p,
		Arch:        platform.ArchARM64,
		BaseURL:     "https://download.derivative.ca",
		DownloadDir: "downloads",
		Clock:       f.clock.Now,
	}
	if p == platform.Windows {
		f.deps.Arch = platform.ArchNone
	}
	return f
}

func TestEmptyCatalogAwaitsChoice(t *testing.T) {
	f := newFixture(platform.Windows)
	var s *Session
	require.NotPanics(t, func() {
		s = New(f.deps, "show.toe", td(2022, 26590), catalog.New())
	})
	assert.Equal(t, AwaitingUserChoice, s.State())

	snap := s.Snapshot()
	assert.False(t, snap.CountdownActive)
	assert.False(t, snap.RequiredInstalled)
	assert.Equal(t, -1, snap.Selected)
	assert.Empty(t, snap.Versions)

	f.clock.now = f.clock.now.Add(time.Minute)
	require.NoError(t, s.Tick(f.clock.now))
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.Empty(t, f.launcher.launched)

	assert.NotPanics(t, func() { s.MoveSelection(1) })
	assert.Equal(t, -1, s.Snapshot().Selected)

	err := s.Launch()
	var le *LaunchError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestNilCatalogIsEmpty(t *testing.T) {
	s := New(newFixture(platform.MacOS).deps, "show.toe", td(2022, 26590), nil)
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.Equal(t, -1, s.Snapshot().Selected)
}

func TestInstalledRequiredStartsCountdownAndLaunches(t *testing.T) {
	f := newFixture(platform.Windows)
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(td(2021, 1), required, td(2023, 5)))

	assert.Equal(t, CountdownRunning, s.State())
	snap := s.Snapshot()
	assert.True(t, snap.CountdownActive)
	assert.Equal(t, 1, snap.Selected)
	assert.Equal(t, "5.0", snap.CountdownLabel)

	f.clock.now = f.clock.now.Add(2750 * time.Millisecond)
	require.NoError(t, s.Tick(f.clock.now))
	assert.Equal(t, CountdownRunning, s.State())
	assert.Equal(t, "2.3", s.Snapshot().CountdownLabel)

	f.clock.now = f.clock.now.Add(3 * time.Second)
	require.NoError(t, s.Tick(f.clock.now))
	assert.Equal(t, Terminated, s.State())
	assert.Equal(t, [][2]string{{"/td/TouchDesigner.2022.26590/TouchDesigner", "show.toe"}}, f.launcher.launched)
}

func TestCountdownLaunchesCurrentSelection(t *testing.T) {
	f := newFixture(platform.Windows)
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(required, td(2023, 5)))
	s.MoveSelection(1)

	f.clock.now = f.clock.now.Add(10 * time.Second)
	require.NoError(t, s.Tick(f.clock.now))
	require.Len(t, f.launcher.launched, 1)
	assert.Equal(t, "/td/TouchDesigner.2023.5/TouchDesigner", f.launcher.launched[0][0])
}

func TestInteractCancelsCountdownPermanently(t *testing.T) {
	f := newFixture(platform.Windows)
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(required))

	s.Interact()
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.False(t, s.Snapshot().CountdownActive)

	s.Interact()
	f.clock.now = f.clock.now.Add(time.Hour)
	require.NoError(t, s.Tick(f.clock.now))
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.Empty(t, f.launcher.launched)
}

func TestConfiguredCountdownLength(t *testing.T) {
	f := newFixture(platform.Windows)
	f.deps.Countdown = 2 * time.Second
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(required))
	assert.Equal(t, "2.0", s.Snapshot().CountdownLabel)

	f.deps.Countdown = 0
	s = New(f.deps, "show.toe", required, newCatalog(required))
	assert.Equal(t, "5.0", s.Snapshot().CountdownLabel)
}

func TestMoveSelectionWraps(t *testing.T) {
	f := newFixture(platform.Windows)
	s := New(f.deps, "show.toe", td(2024, 1), newCatalog(td(2021, 1), td(2022, 2), td(2023, 3)))
	assert.Equal(t, 0, s.Snapshot().Selected)

	s.MoveSelection(-1)
	assert.Equal(t, 2, s.Snapshot().Selected)
	s.MoveSelection(1)
	assert.Equal(t, 0, s.Snapshot().Selected)
	s.MoveSelection(1)
	s.MoveSelection(1)
	assert.Equal(t, 2, s.Snapshot().Selected)
	s.MoveSelection(1)
	assert.Equal(t, 0, s.Snapshot().Selected)
	s.MoveSelection(7)
	assert.Equal(t, 1, s.Snapshot().Selected)

	id, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, td(2022, 2), id)

	s.Select(2)
	assert.Equal(t, 2, s.Snapshot().Selected)
	s.Select(9)
	assert.Equal(t, 2, s.Snapshot().Selected)
}

func TestLaunchFailureIsRecoverable(t *testing.T) {
	f := newFixture(platform.MacOS)
	boom := errors.New("exit status 1")
	f.launcher.launchErr = boom
	required := td(2022, 26590)
	cat := catalog.New()
	cat.Add(catalog.InstalledVersion{ID: required, ExecutablePath: "/Applications/TD.app/Contents/MacOS/TouchDesigner", BundlePath: "/Applications/TD.app"})
	cat.Add(catalog.InstalledVersion{ID: td(2023, 1), ExecutablePath: "/Applications/TD2.app/Contents/MacOS/TouchDesigner", BundlePath: "/Applications/TD2.app"})
	s := New(f.deps, "/docs/show.toe", required, cat)

	err := s.Launch()
	var le *LaunchError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "/Applications/TD.app", le.Target)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.Equal(t, err, s.Snapshot().LastError)
	assert.Len(t, f.presenter.errs, 1)

	f.launcher.launchErr = nil
	s.MoveSelection(1)
	require.NoError(t, s.Launch())
	assert.Equal(t, Terminated, s.State())
	assert.Equal(t, [2]string{"/Applications/TD2.app", "/docs/show.toe"}, f.launcher.launched[1])
}

func TestLaunchWarnsWhenRunning(t *testing.T) {
	f := newFixture(platform.Windows)
	var checked string
	f.deps.IsRunning = func(exe string) bool {
		checked = exe
		return true
	}
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(required))
	require.NoError(t, s.Launch())
	assert.Equal(t, "/td/TouchDesigner.2022.26590/TouchDesigner", checked)
}

func TestDownloadAndInstall(t *testing.T) {
	f := newFixture(platform.Windows)
	f.fetcher.steps = [][3]int64{{0, 8192, 20000}, {1, 8192, 20000}, {1, 8192, 20000}, {3, 8192, 20000}}
	s := New(f.deps, "show.toe", td(2022, 26590), newCatalog(td(2021, 1)))

	require.NoError(t, s.Download(context.Background()))
	assert.Equal(t, "https://download.derivative.ca/TouchDesigner.2022.26590.exe", f.fetcher.url)
	assert.Equal(t, filepath.Join("downloads", "TouchDesigner.2022.26590.exe"), f.fetcher.dest)

	snap := s.Snapshot()
	assert.Equal(t, AwaitingUserChoice, snap.State)
	assert.True(t, snap.InstallReady)
	require.NotNil(t, snap.Download)
	assert.Equal(t, Completed, snap.Download.State)
	assert.Equal(t, 1.0, snap.Download.Progress)
	for i := 1; i < len(f.presenter.percents); i++ {
		assert.GreaterOrEqual(t, f.presenter.percents[i], f.presenter.percents[i-1])
	}

	require.NoError(t, s.Install())
	assert.Equal(t, Terminated, s.State())
	assert.Equal(t, []string{filepath.Join("downloads", "TouchDesigner.2022.26590.exe")}, f.launcher.installers)
}

func TestMacDownloadGoesNextToDocument(t *testing.T) {
	f := newFixture(platform.MacOS)
	doc := filepath.Join("projects", "show.toe")
	s := New(f.deps, doc, td(2022, 26590), catalog.New())
	require.NoError(t, s.Download(context.Background()))
	assert.Equal(t, "https://download.derivative.ca/TouchDesigner.2022.26590.arm64.dmg", f.fetcher.url)
	assert.Equal(t, filepath.Join("projects", "TouchDesigner.2022.26590.arm64.dmg"), f.fetcher.dest)
}

func TestDownloadFailureReturnsToChoice(t *testing.T) {
	f := newFixture(platform.Windows)
	boom := errors.New("connection reset")
	f.fetcher.err = boom
	s := New(f.deps, "show.toe", td(2022, 26590), catalog.New())

	err := s.Download(context.Background())
	var de *DownloadError
	require.True(t, errors.As(err, &de))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "https://download.derivative.ca/TouchDesigner.2022.26590.exe", de.URL)

	snap := s.Snapshot()
	assert.Equal(t, AwaitingUserChoice, snap.State)
	assert.Equal(t, Failed, snap.Download.State)
	assert.False(t, snap.InstallReady)

	err = s.Install()
	var ie *InstallError
	require.True(t, errors.As(err, &ie))
	assert.ErrorIs(t, err, ErrNoInstaller)
	assert.Empty(t, f.launcher.installers)
}

func TestDownloadPreconditions(t *testing.T) {
	t.Run("already installed", func(t *testing.T) {
		f := newFixture(platform.Windows)
		required := td(2022, 26590)
		s := New(f.deps, "show.toe", required, newCatalog(required))
		_, err := s.BeginDownload()
		assert.ErrorIs(t, err, ErrAlreadyInstalled)
	})

	t.Run("too old", func(t *testing.T) {
		f := newFixture(platform.Windows)
		s := New(f.deps, "show.toe", td(2019, 20700), catalog.New())
		_, err := s.BeginDownload()
		assert.ErrorIs(t, err, ErrNotDownloadable)
		assert.False(t, s.Snapshot().Downloadable)
		assert.Equal(t, AwaitingUserChoice, s.State())
	})

	t.Run("busy", func(t *testing.T) {
		f := newFixture(platform.Windows)
		s := New(f.deps, "show.toe", td(2022, 26590), catalog.New())
		_, err := s.BeginDownload()
		require.NoError(t, err)
		assert.Equal(t, Downloading, s.State())

		_, err = s.BeginDownload()
		assert.ErrorIs(t, err, ErrBusy)
		assert.ErrorIs(t, s.Launch(), ErrBusy)
		assert.Equal(t, Downloading, s.State())
	})
}

func TestSuccessfulDownloadClearsBusyError(t *testing.T) {
	f := newFixture(platform.Windows)
	s := New(f.deps, "show.toe", td(2022, 26590), catalog.New())
	_, err := s.BeginDownload()
	require.NoError(t, err)

	assert.ErrorIs(t, s.Launch(), ErrBusy)
	require.ErrorIs(t, s.LastError(), ErrBusy)

	s.FinishDownload(nil)
	assert.NoError(t, s.LastError())
	assert.True(t, s.Snapshot().InstallReady)
	assert.Equal(t, AwaitingUserChoice, s.State())
}

func TestApplyProgressClampsAndNeverDecreases(t *testing.T) {
	f := newFixture(platform.Windows)
	s := New(f.deps, "show.toe", td(2022, 26590), catalog.New())
	_, err := s.BeginDownload()
	require.NoError(t, err)

	for _, tc := range []struct {
		in   float64
		want float64
	}{
		{0.25, 0.25},
		{0.1, 0.25},
		{math.NaN(), 0.25},
		{-3, 0.25},
		{0.5, 0.5},
		{42, 1},
		{0.9, 1},
	} {
		s.ApplyProgress(tc.in)
		got := s.Snapshot().Download.Progress
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, tc.want, got)
		assert.Equal(t, InProgress, s.Snapshot().Download.State)
	}
}

func TestInstallFailureIsRecoverable(t *testing.T) {
	f := newFixture(platform.Windows)
	f.launcher.installErr = errors.New("installer refused")
	s := New(f.deps, "show.toe", td(2022, 26590), catalog.New())
	require.NoError(t, s.Download(context.Background()))

	err := s.Install()
	var ie *InstallError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, AwaitingUserChoice, s.State())
	assert.True(t, s.Snapshot().InstallReady)
}

func TestQuit(t *testing.T) {
	f := newFixture(platform.Windows)
	required := td(2022, 26590)
	s := New(f.deps, "show.toe", required, newCatalog(required))
	s.Quit()
	assert.Equal(t, Terminated, s.State())
	require.NoError(t, s.Tick(f.clock.now.Add(time.Hour)))
	assert.Empty(t, f.launcher.launched)
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(platform.Windows)
	s := New(f.deps, "show.toe", td(2022, 26590), newCatalog(td(2021, 1)))
	_, err := s.BeginDownload()
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Download.Progress = 0.9
	snap.Versions[0].ExecutablePath = "changed"
	again := s.Snapshot()
	assert.Equal(t, 0.0, again.Download.Progress)
	assert.NotEqual(t, "changed", again.Versions[0].ExecutablePath)
}

func TestCountdown(t *testing.T) {
	start := time.Unix(1700000000, 0)
	c := NewCountdown(5*time.Second, start)
	assert.Equal(t, 5*time.Second, c.Remaining(start))
	assert.Equal(t, 5*time.Second, c.Remaining(start.Add(99*time.Millisecond)))
	assert.Equal(t, 4900*time.Millisecond, c.Remaining(start.Add(100*time.Millisecond)))
	assert.Equal(t, "4.9", c.Label(start.Add(150*time.Millisecond)))
	assert.Equal(t, time.Duration(0), c.Remaining(start.Add(time.Minute)))
	assert.Equal(t, "0.0", c.Label(start.Add(time.Minute)))
	assert.True(t, c.Expired(start.Add(5*time.Second)))

	c.Cancel()
	assert.False(t, c.Active())
	assert.False(t, c.Expired(start.Add(time.Minute)))

	var disabled Countdown
	assert.False(t, disabled.Active())
	assert.Equal(t, "0.0", disabled.Label(start))
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "CountdownRunning", CountdownRunning.String())
	assert.Equal(t, "Failed", Failed.String())
	assert.Equal(t, "Unknown", State(99).String())
}
