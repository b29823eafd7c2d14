// Package addonpath turns a user-chosen directory into the canonical
// World of Warcraft retail AddOns directory.
//
// Normalize is pure path-string logic and never touches the filesystem.
// Locate is the only function here that probes the disk.
package addonpath

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	RetailFolder    = "_retail_"
	InterfaceFolder = "Interface"
	AddOnsFolder    = "AddOns"
	GameFolder      = "World of Warcraft"
)

// layout is a recognised tail of an absolute path and the segments that
// complete it to .../_retail_/Interface/AddOns.
type layout struct {
	tail   []string
	suffix []string
}

// layouts are ordered most specific first.
var layouts = []layout{
	{tail: []string{RetailFolder, InterfaceFolder, AddOnsFolder}},
	{tail: []string{RetailFolder, InterfaceFolder}, suffix: []string{AddOnsFolder}},
	{tail: []string{RetailFolder}, suffix: []string{InterfaceFolder, AddOnsFolder}},
	{tail: []string{GameFolder}, suffix: []string{RetailFolder, InterfaceFolder, AddOnsFolder}},
}

// Normalize returns the AddOns directory for path, or "" when path is empty
// or does not end in one of the recognised layouts. Segment comparison is
// exact and case-sensitive.
func Normalize(path string) string {
	if path == "" {
		return ""
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}

	segments := splitSegments(abs)
	for _, l := range layouts {
		if hasTail(segments, l.tail) {
			return filepath.Join(append([]string{abs}, l.suffix...)...)
		}
	}
	return ""
}

// splitSegments returns the non-empty directory names of a cleaned path.
func splitSegments(path string) []string {
	path = strings.TrimPrefix(path, filepath.VolumeName(path))
	var segments []string
	for _, s := range strings.Split(path, string(filepath.Separator)) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func hasTail(segments, tail []string) bool {
	if len(segments) < len(tail) {
		return false
	}
	offset := len(segments) - len(tail)
	for i, want := range tail {
		if segments[offset+i] != want {
			return false
		}
	}
	return true
}

// State describes a configured add-ons path.
type State int

const (
	// StateNotSet means no path was configured.
	StateNotSet State = iota
	// StateInvalid means the path does not match any recognised layout.
	StateInvalid
	// StateValid means the path normalizes to an AddOns directory.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateNotSet:
		return "not set"
	case StateInvalid:
		return "invalid"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Classify reports whether path is unset, unrecognised or usable.
func Classify(path string) State {
	if path == "" {
		return StateNotSet
	}
	if Normalize(path) == "" {
		return StateInvalid
	}
	return StateValid
}

// Candidates lists the usual game install directories for the host OS.
// Tests and packagers may replace it.
var Candidates = defaultCandidates(runtime.GOOS)

func defaultCandidates(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files (x86)\World of Warcraft`,
			`C:\Program Files\World of Warcraft`,
			`D:\World of Warcraft`,
		}
	case "darwin":
		return []string{
			"/Applications/World of Warcraft",
		}
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		return []string{
			filepath.Join(home, "Games", "world-of-warcraft", "drive_c", "Program Files (x86)", "World of Warcraft"),
			filepath.Join(home, ".wine", "drive_c", "Program Files (x86)", "World of Warcraft"),
		}
	}
}

// statFunc is replaced in tests.
var statFunc = os.Stat

// Locate returns the first candidate game directory that exists, or "".
func Locate() string {
	for _, dir := range Candidates {
		info, err := statFunc(dir)
		if err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
