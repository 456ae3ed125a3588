// pkg/progress/progress.go - download progress math, throttled progress reader and console bar.

package progress

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// DefaultBlockSize is the unit progress callbacks count in.
const DefaultBlockSize int64 = 8192

// Callback receives progress as (blocks transferred, block size, total bytes).
// total is <= 0 when the size is unknown.
type Callback func(blocks, blockSize, total int64)

// Fraction converts callback arguments into a completion fraction clamped to
// [0,1]. An unknown or zero total yields 0.
func Fraction(blocks, blockSize, total int64) float64 {
	if total <= 0 || blocks <= 0 || blockSize <= 0 {
		return 0
	}
	f := float64(blocks) * float64(blockSize) / float64(total)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return math.Min(f, 1)
}

// Label renders a fraction as a percentage truncated (not rounded) to one
// decimal place, e.g. 0.4567 -> "45.6".
func Label(fraction float64) string {
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	tenths := math.Floor(fraction*1000 + 1e-9)
	return fmt.Sprintf("%.1f", tenths/10)
}

// Reader wraps an io.Reader and reports progress in whole blocks, at most
// once per interval plus a final report at EOF.
type Reader struct {
	reader         io.Reader
	total          int64
	read           int64
	blockSize      int64
	callback       Callback
	lastUpdate     time.Time
	updateInterval time.Duration
	now            func() time.Time
}

// NewReader creates a progress tracking reader.
func NewReader(reader io.Reader, total int64, callback Callback) *Reader {
	return &Reader{
		reader:         reader,
		total:          total,
		blockSize:      DefaultBlockSize,
		callback:       callback,
		updateInterval: 100 * time.Millisecond,
		now:            time.Now,
	}
}

// Start emits the initial zero-progress report.
func (r *Reader) Start() {
	r.lastUpdate = r.now()
	if r.callback != nil {
		r.callback(0, r.blockSize, r.total)
	}
}

// Read implements io.Reader interface with progress tracking
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		r.read += int64(n)
	}
	if n > 0 || err == io.EOF {
		r.report(err == io.EOF)
	}
	return n, err
}

func (r *Reader) report(final bool) {
	if r.callback == nil {
		return
	}
	now := r.now()
	if !final && now.Sub(r.lastUpdate) < r.updateInterval {
		return
	}
	r.lastUpdate = now
	blocks := (r.read + r.blockSize - 1) / r.blockSize
	r.callback(blocks, r.blockSize, r.total)
}

// Bar draws the waterfall-style console bar used in headless mode.
func Bar(fraction float64, width int) string {
	if width <= 0 {
		width = 50
	}
	percentage := int(Fraction(int64(fraction*10000), 1, 10000) * 100)
	filled := (percentage * width) / 100

	bar := make([]rune, width)
	for i := 0; i < width; i++ {
		switch {
		case i < filled-3:
			bar[i] = '█'
		case i < filled-2:
			bar[i] = '▓'
		case i < filled-1:
			bar[i] = '▒'
		case i < filled:
			bar[i] = '░'
		default:
			bar[i] = '·'
		}
	}

	var indicator string
	switch {
	case percentage < 25:
		indicator = "[  ]"
	case percentage < 50:
		indicator = "[- ]"
	case percentage < 75:
		indicator = "[--]"
	case percentage < 100:
		indicator = "[->]"
	default:
		indicator = "[OK]"
	}
	return fmt.Sprintf("%s %s %s%%", indicator, string(bar), Label(fraction))
}

// FormatBytes renders a byte count for humans.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Overlay is the text shown on a progress bar while downloading.
func Overlay(fraction float64) string {
	return strings.Join([]string{"downloading", Label(fraction) + "%"}, " ")
}
