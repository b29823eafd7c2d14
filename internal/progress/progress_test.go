package progress

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1.0KB"},
		{1536, "1.5KB"},
		{1048576, "1.0MB"},
		{52428800, "50.0MB"},
		{1073741824, "1.0GB"},
	}

	for _, tt := range tests {
		result := formatBytes(tt.bytes)
		if result != tt.expected {
			t.Errorf("formatBytes(%d) = %s, want %s", tt.bytes, result, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "0:00"},
		{30, "0:30"},
		{90, "1:30"},
		{3661, "1:01:01"},
		{-5, "0:00"},
	}

	for _, tt := range tests {
		result := formatDuration(tt.seconds)
		if result != tt.expected {
			t.Errorf("formatDuration(%v) = %s, want %s", tt.seconds, result, tt.expected)
		}
	}
}

func TestBar(t *testing.T) {
	if got := bar(0); len(got) != barWidth || !strings.HasPrefix(got, ">") {
		t.Errorf("bar(0) = %q", got)
	}
	if got := bar(50); len(got) != barWidth || strings.Count(got, "=") != barWidth/2 {
		t.Errorf("bar(50) = %q", got)
	}
	if got := bar(100); got != strings.Repeat("=", barWidth) {
		t.Errorf("bar(100) = %q", got)
	}
}

// fakeNow returns a clock advancing by step on every call.
func fakeNow(step time.Duration) func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestWriter_KnownTotal(t *testing.T) {
	dest := &bytes.Buffer{}
	output := &bytes.Buffer{}

	pw := NewWriter(dest, 1000, output, "WeakAuras-5.12.0")
	pw.now = fakeNow(time.Second)
	pw.startTime = pw.now()

	data := make([]byte, 100)
	for i := 0; i < 5; i++ {
		n, err := pw.Write(data)
		if err != nil || n != 100 {
			t.Fatalf("Write() = %d, %v", n, err)
		}
	}

	if dest.Len() != 500 {
		t.Errorf("dest has %d bytes, want 500", dest.Len())
	}
	if pw.Written() != 500 {
		t.Errorf("Written() = %d, want 500", pw.Written())
	}

	out := output.String()
	for _, want := range []string{"WeakAuras-5.12.0", " 50%", "500B/1000B", "ETA"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}

	pw.Finish()
	if !strings.HasSuffix(output.String(), "\r") {
		t.Error("Finish() should end by returning the cursor to column 0")
	}
}

func TestWriter_UnknownTotal(t *testing.T) {
	output := &bytes.Buffer{}

	pw := NewWriter(&bytes.Buffer{}, -1, output, "Details")
	pw.now = fakeNow(time.Second)
	pw.startTime = pw.now()

	_, _ = pw.Write(make([]byte, 2048))

	out := output.String()
	if !strings.Contains(out, "Details 2.0KB") {
		t.Errorf("output = %q, want label and byte count", out)
	}
	if strings.Contains(out, "%") {
		t.Errorf("output = %q, want no percentage for unknown size", out)
	}
}

func TestWriter_RateLimited(t *testing.T) {
	output := &bytes.Buffer{}

	pw := NewWriter(&bytes.Buffer{}, 100, output, "x")
	pw.now = fakeNow(time.Millisecond)
	pw.startTime = pw.now()

	for i := 0; i < 10; i++ {
		_, _ = pw.Write([]byte{0})
	}

	if draws := strings.Count(output.String(), "\r"); draws != 1 {
		t.Errorf("drew %d times in 10ms, want 1", draws)
	}
}

func TestIsTerminal(t *testing.T) {
	origFunc := IsTerminalFunc
	defer func() { IsTerminalFunc = origFunc }()

	IsTerminalFunc = func(fd int) bool { return true }
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is never a terminal")
	}
	if !IsTerminal(os.Stderr) {
		t.Error("IsTerminal(os.Stderr) should follow IsTerminalFunc")
	}
	if !ShouldShowProgress() {
		t.Error("ShouldShowProgress() should be true when stderr is a terminal")
	}

	IsTerminalFunc = func(fd int) bool { return false }
	if ShouldShowProgress() {
		t.Error("ShouldShowProgress() should be false when stderr is not a terminal")
	}
}
