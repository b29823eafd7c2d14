// Package progress draws download bars and spinners on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	// lineWidth is the width padded to when redrawing a line.
	lineWidth = 80

	// barWidth is the number of cells in the download bar.
	barWidth = 24

	// redrawInterval limits how often a Writer repaints.
	redrawInterval = 100 * time.Millisecond
)

// IsTerminalFunc is the function used to check if a file descriptor is a terminal.
// It can be overridden for testing.
var IsTerminalFunc = term.IsTerminal

// Writer counts bytes passing through to an underlying writer and draws a
// one-line download bar on output.
type Writer struct {
	writer io.Writer
	output io.Writer
	label  string
	total  int64
	now    func() time.Time

	mu        sync.Mutex
	written   int64
	startTime time.Time
	lastDraw  time.Time
}

// NewWriter creates a progress writer for a download named label. A total
// of zero or less means the size is unknown and only bytes and speed are shown.
func NewWriter(w io.Writer, total int64, output io.Writer, label string) *Writer {
	pw := &Writer{
		writer: w,
		output: output,
		label:  label,
		total:  total,
		now:    time.Now,
	}
	pw.startTime = pw.now()
	return pw
}

// Write implements io.Writer.
func (pw *Writer) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	if n > 0 {
		pw.mu.Lock()
		pw.written += int64(n)
		pw.draw(false)
		pw.mu.Unlock()
	}
	return n, err
}

// Written returns the number of bytes written so far.
func (pw *Writer) Written() int64 {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	return pw.written
}

// Finish clears the progress line.
func (pw *Writer) Finish() {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	clearLine(pw.output)
}

// draw repaints the line unless the last repaint was too recent.
func (pw *Writer) draw(force bool) {
	now := pw.now()
	if !force && now.Sub(pw.lastDraw) < redrawInterval {
		return
	}
	pw.lastDraw = now

	elapsed := now.Sub(pw.startTime).Seconds()
	if elapsed <= 0 {
		return
	}
	speed := float64(pw.written) / elapsed

	var line string
	if pw.total > 0 {
		percent := float64(pw.written) / float64(pw.total) * 100
		if percent > 100 {
			percent = 100
		}

		eta := "--:--"
		if speed > 0 {
			eta = formatDuration(float64(pw.total-pw.written) / speed)
		}

		line = fmt.Sprintf("\r   %s [%s] %3.0f%% %s/%s ETA %s",
			pw.label, bar(percent), percent,
			formatBytes(pw.written), formatBytes(pw.total), eta)
	} else {
		line = fmt.Sprintf("\r   %s %s (%s/s)", pw.label, formatBytes(pw.written), formatBytes(int64(speed)))
	}

	_, _ = fmt.Fprint(pw.output, pad(line))
}

// bar renders a fill bar for percent in [0, 100].
func bar(percent float64) string {
	filled := int(percent / 100 * barWidth)
	if filled >= barWidth {
		return strings.Repeat("=", barWidth)
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barWidth-filled-1)
}

func pad(line string) string {
	if len(line) < lineWidth {
		return line + strings.Repeat(" ", lineWidth-len(line))
	}
	return line
}

func clearLine(w io.Writer) {
	fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", lineWidth))
}

// formatBytes formats bytes into human-readable format
func formatBytes(b int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case b >= GB:
		return fmt.Sprintf("%.1fGB", float64(b)/GB)
	case b >= MB:
		return fmt.Sprintf("%.1fMB", float64(b)/MB)
	case b >= KB:
		return fmt.Sprintf("%.1fKB", float64(b)/KB)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// formatDuration formats seconds as M:SS, or H:MM:SS past an hour.
func formatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	if s >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// IsTerminal reports whether w is a terminal. Anything other than an
// *os.File is treated as not a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return IsTerminalFunc(int(f.Fd()))
}

// ShouldShowProgress returns true when stderr, where progress is drawn, is a
// terminal.
func ShouldShowProgress() bool {
	return IsTerminal(os.Stderr)
}
