// cmd/tdlauncher/console.go - console presenter for --no-ui runs and the release update check.

package main

import (
	"fmt"
	"io"

	"github.com/tcnksm/go-latest"

	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/progress"
	"github.com/windowsadmins/tdlauncher/pkg/version"
)

// consolePresenter prints session updates for --no-ui runs. Messages and
// the progress bar share one stream so the bar line is closed before text.
type consolePresenter struct {
	log      *logging.Logger
	out      io.Writer
	verbose  bool
	lastPct  int
	inUpdate bool
}

func newConsolePresenter(l *logging.Logger, out io.Writer, verbose bool) *consolePresenter {
	l.SetOutput(out)
	return &consolePresenter{log: l, out: out, verbose: verbose, lastPct: -1}
}

func (c *consolePresenter) Message(txt string) {
	c.endLine()
	c.log.Printf("%s", txt)
}

// Detail lines are only shown with --debug and never while the bar is drawn.
func (c *consolePresenter) Detail(txt string) {
	if !c.verbose || c.inUpdate || txt == "" {
		return
	}
	c.log.Debug("%s", txt)
}

func (c *consolePresenter) Percent(pct int) {
	if pct < 0 || pct == c.lastPct {
		return
	}
	c.lastPct = pct
	c.inUpdate = pct < 100
	fmt.Fprintf(c.out, "\r%s", progress.Bar(float64(pct)/100, 40))
	if pct >= 100 {
		fmt.Fprintln(c.out)
	}
}

func (c *consolePresenter) Error(err error) {
	c.endLine()
	c.log.Error("%v", err)
}

func (c *consolePresenter) endLine() {
	if c.inUpdate {
		fmt.Fprintln(c.out)
		c.inUpdate = false
	}
}

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:             "windowsadmins",
		Repository:        "tdlauncher",
		FixVersionStrFunc: version.Semver,
	}

	res, err := latest.Check(githubTag, version.Semver(currentVer))
	if err != nil {
		logger.Warning("Could not check for updates: %v", err)
		return
	}

	if res.Outdated {
		logger.Printf("A new version is available: %s (you have %s)", res.Current, currentVer)
		logger.Printf("Download it from https://github.com/windowsadmins/tdlauncher/releases")
	} else {
		logger.Success("You are using the latest version: %s", currentVer)
	}
}
