// Package toc reads add-on descriptor (.toc) files.
//
// A descriptor is plain text with metadata lines of the form
// "## Key: value"; everything else (file lists, comments) is ignored.
package toc

import "strings"

const versionMarker = "## Version:"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func lines(text string) []string {
	return strings.Split(lineBreaks.Replace(text), "\n")
}

// ExtractVersion returns the value of the first "## Version:" line, trimmed.
// It returns "" when text is empty, has no version line, or the first version
// line is blank.
func ExtractVersion(text string) string {
	if text == "" {
		return ""
	}
	for _, line := range lines(text) {
		if strings.HasPrefix(line, versionMarker) {
			return strings.TrimSpace(line[len(versionMarker):])
		}
	}
	return ""
}

// Fields returns every "## Key: value" pair in text. The first occurrence of
// a key wins and values are trimmed.
func Fields(text string) map[string]string {
	fields := make(map[string]string)
	for _, line := range lines(text) {
		rest, ok := strings.CutPrefix(line, "## ")
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields
}
