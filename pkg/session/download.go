// pkg/session/download.go - installer download for a missing required version.

package session

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/windowsadmins/tdlauncher/pkg/download"
	"github.com/windowsadmins/tdlauncher/pkg/logging"
	"github.com/windowsadmins/tdlauncher/pkg/progress"
)

// DownloadJob is the blocking fetch started by BeginDownload. It may run off
// the session loop; it never touches the session itself.
type DownloadJob struct {
	URL  string
	Dest string

	fetcher download.Fetcher
}

// Run fetches the installer, reporting clamped fractions to onProgress.
func (j *DownloadJob) Run(ctx context.Context, onProgress func(fraction float64)) error {
	return j.fetcher.Fetch(ctx, j.URL, j.Dest, func(blocks, blockSize, total int64) {
		if onProgress != nil {
			onProgress(progress.Fraction(blocks, blockSize, total))
		}
	})
}

// BeginDownload validates that the required version can be downloaded and
// moves the session to Downloading.
func (s *Session) BeginDownload() (*DownloadJob, error) {
	switch {
	case s.busy():
		return nil, s.fail(&DownloadError{Err: ErrBusy})
	case s.catalog.Contains(s.required):
		return nil, s.fail(&DownloadError{Err: ErrAlreadyInstalled})
	case !download.Downloadable(s.required):
		return nil, s.fail(&DownloadError{Err: fmt.Errorf("%w: %s", ErrNotDownloadable, s.required)})
	case s.deps.Fetcher == nil:
		return nil, s.fail(&DownloadError{Err: fmt.Errorf("no fetcher configured")})
	}
	s.countdown.Cancel()

	url := download.ResolveURL(s.deps.BaseURL, s.required, s.deps.Platform, s.deps.Arch)
	dest := download.DestinationPath(url, s.documentPath, s.deps.Platform, s.deps.DownloadDir)
	s.download = &DownloadTask{
		ID:              s.required,
		SourceURL:       url,
		DestinationPath: dest,
		State:           Pending,
	}
	s.installReady = false
	s.lastError = nil
	s.state = Downloading

	logging.Info("Downloading installer", "url", url, "destination", dest)
	s.deps.Presenter.Message(fmt.Sprintf("Downloading %s", filepath.Base(dest)))
	s.deps.Presenter.Percent(0)
	return &DownloadJob{URL: url, Dest: dest, fetcher: s.deps.Fetcher}, nil
}

// ApplyProgress records download progress. The fraction is clamped to [0,1]
// and the recorded value never decreases.
func (s *Session) ApplyProgress(fraction float64) {
	task := s.download
	if task == nil || (task.State != Pending && task.State != InProgress) {
		return
	}
	task.State = InProgress
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(fraction, 1))
	if fraction <= task.Progress {
		return
	}
	task.Progress = fraction
	s.deps.Presenter.Percent(int(fraction * 100))
	s.deps.Presenter.Detail(progress.Overlay(fraction))
}

// FinishDownload applies the outcome of a DownloadJob. Either way the
// session returns to AwaitingUserChoice; success enables Install.
func (s *Session) FinishDownload(err error) {
	task := s.download
	if task == nil || s.state != Downloading {
		return
	}
	s.state = AwaitingUserChoice
	if err != nil {
		task.State = Failed
		s.fail(&DownloadError{URL: task.SourceURL, Err: err})
		return
	}
	task.State = Completed
	task.Progress = 1
	s.installReady = true
	s.lastError = nil
	logging.Info("Installer downloaded", "path", task.DestinationPath)
	s.deps.Presenter.Percent(100)
	s.deps.Presenter.Message(fmt.Sprintf("Downloaded %s, ready to install", filepath.Base(task.DestinationPath)))
}

// Download is the blocking form of BeginDownload, Run and FinishDownload for
// callers that own the loop themselves.
func (s *Session) Download(ctx context.Context) error {
	job, err := s.BeginDownload()
	if err != nil {
		return err
	}
	s.FinishDownload(job.Run(ctx, s.ApplyProgress))
	if s.download.State == Failed {
		return s.lastError
	}
	return nil
}
