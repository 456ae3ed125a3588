package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/tdlauncher/pkg/build"
	"github.com/windowsadmins/tdlauncher/pkg/catalog"
	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/platform"
	"github.com/windowsadmins/tdlauncher/pkg/session"
)

type stubLauncher struct {
	launched []string
	err      error
}

func (s *stubLauncher) Launch(target, _ string) error {
	s.launched = append(s.launched, target)
	return s.err
}

func (s *stubLauncher) StartInstaller(path string) error {
	s.launched = append(s.launched, path)
	return s.err
}

type stubFetcher struct{ err error }

func (f stubFetcher) Fetch(_ context.Context, _, _ string, onProgress download.ProgressFunc) error {
	onProgress(0, 8192, 16384)
	onProgress(1, 8192, 16384)
	onProgress(2, 8192, 16384)
	return f.err
}

func td(year, b int) build.ID {
	return build.ID{Product: "TouchDesigner", Year: year, Build: b}
}

func newModel(t *testing.T, required build.ID, installed ...build.ID) (AppModel, *stubLauncher) {
	t.Helper()
	cat := catalog.New()
	for _, id := range installed {
		cat.Add(catalog.InstalledVersion{ID: id, ExecutablePath: id.String() + ".exe"})
	}
	l := &stubLauncher{}
	s := session.New(session.Dependencies{
		Fetcher:     stubFetcher{},
		Launcher:    l,
		Platform:    platform.Windows,
		BaseURL:     "https://download.derivative.ca",
		DownloadDir: t.TempDir(),
	}, "show.toe", required, cat)
	return InitialModel(context.Background(), s), l
}

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	require.True(t, ok)
	return am, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestKeyCancelsCountdownAndMovesSelection(t *testing.T) {
	required := td(2022, 26590)
	m, _ := newModel(t, required, td(2021, 1), required)
	assert.Equal(t, session.CountdownRunning, m.Session.State())

	m, cmd := update(t, m, key("down"))
	assert.False(t, isQuit(cmd))
	assert.Equal(t, session.AwaitingUserChoice, m.Session.State())
	assert.Equal(t, 0, m.Session.Snapshot().Selected)

	m, _ = update(t, m, key("k"))
	assert.Equal(t, 1, m.Session.Snapshot().Selected)
	assert.NotContains(t, m.View(), "Opening in")
}

func TestMouseClickCancelsCountdown(t *testing.T) {
	required := td(2022, 26590)
	m, _ := newModel(t, required, required)
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.False(t, m.Session.Snapshot().CountdownActive)
}

func TestMouseClickSelectsVersionRow(t *testing.T) {
	required := td(2022, 26590)
	m, l := newModel(t, required, td(2021, 1), required, td(2023, 5))
	assert.Equal(t, 1, m.Session.Snapshot().Selected)

	lines := strings.Split(m.View(), "\n")
	idx, ok := versionAt(m.Session.Snapshot(), 8)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Contains(t, lines[8], "TouchDesigner.2023.5")

	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Y: 8})
	assert.Equal(t, 2, m.Session.Snapshot().Selected)
	assert.False(t, m.Session.Snapshot().CountdownActive)

	// Rows outside the list leave the selection alone.
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Y: 2})
	assert.Equal(t, 2, m.Session.Snapshot().Selected)
	m, _ = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Y: 9})
	assert.Equal(t, 2, m.Session.Snapshot().Selected)

	m, _ = update(t, m, key("enter"))
	assert.Equal(t, []string{"TouchDesigner.2023.5.exe"}, l.launched)
}

func TestEnterLaunchesAndQuits(t *testing.T) {
	required := td(2022, 26590)
	m, l := newModel(t, required, required)
	m, cmd := update(t, m, key("enter"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, session.Terminated, m.Session.State())
	assert.Equal(t, []string{"TouchDesigner.2022.26590.exe"}, l.launched)
}

func TestLaunchFailureStaysOpen(t *testing.T) {
	required := td(2022, 26590)
	m, l := newModel(t, required, required)
	l.err = errors.New("access denied")
	m, cmd := update(t, m, key("enter"))
	assert.False(t, isQuit(cmd))
	assert.Contains(t, m.View(), "access denied")
}

func TestTickLaunchesWhenCountdownExpires(t *testing.T) {
	required := td(2022, 26590)
	m, l := newModel(t, required, required)

	_, cmd := update(t, m, MsgTick(time.Now()))
	assert.False(t, isQuit(cmd))

	_, cmd = update(t, m, MsgTick(time.Now().Add(10*time.Second)))
	assert.True(t, isQuit(cmd))
	assert.Len(t, l.launched, 1)
}

func TestEscQuits(t *testing.T) {
	m, _ := newModel(t, td(2022, 26590))
	m, cmd := update(t, m, key("esc"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, session.Terminated, m.Session.State())
}

func TestDownloadThenInstall(t *testing.T) {
	m, l := newModel(t, td(2022, 26590), td(2021, 1))
	assert.Contains(t, m.View(), "NOT INSTALLED")

	m, cmd := update(t, m, key("d"))
	require.NotNil(t, cmd)
	assert.Equal(t, session.Downloading, m.Session.State())

	for i := 0; i < 10 && cmd != nil; i++ {
		m, cmd = update(t, m, cmd())
	}
	snap := m.Session.Snapshot()
	assert.Equal(t, session.AwaitingUserChoice, snap.State)
	assert.True(t, snap.InstallReady)
	assert.Contains(t, m.View(), "Press i to install")

	m, cmd = update(t, m, key("i"))
	assert.True(t, isQuit(cmd))
	require.Len(t, l.launched, 1)
	assert.Contains(t, l.launched[0], "TouchDesigner.2022.26590.exe")
}

func TestOldBuildShowsNotice(t *testing.T) {
	m, _ := newModel(t, td(2019, 20700))
	view := m.View()
	assert.Contains(t, view, "cannot be downloaded")
	assert.NotContains(t, view, "d download")

	m, cmd := update(t, m, key("d"))
	assert.Nil(t, cmd)
	assert.Equal(t, session.AwaitingUserChoice, m.Session.State())
}
