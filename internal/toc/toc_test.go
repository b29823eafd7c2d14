package toc

import "testing"

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", ""},
		{"simple", "## Version: v9921\n## Title: X", "v9921"},
		{"trailing spaces", "## Version: 1.2.3   \n", "1.2.3"},
		{"tab padding", "## Version:\t2.0\t", "2.0"},
		{"crlf", "## Title: X\r\n## Version: 4.5\r\n", "4.5"},
		{"bare cr", "## Title: X\r## Version: 4.6\r", "4.6"},
		{"no version line", "## Title: X\n## Author: Y\n", ""},
		{"blank version", "## Version:   \n## Version: 2\n", ""},
		{"first wins", "## Version: 1\n## Version: 2\n", "1"},
		{"indented line ignored", "  ## Version: 3\n", ""},
		{"file list only", "Core.lua\nOptions.lua\n", ""},
		{"no space after colon", "## Version:7", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVersion(tt.text); got != tt.want {
				t.Errorf("ExtractVersion(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestFields(t *testing.T) {
	text := "## Interface: 110002\r\n## Title: Coffee Auras\n## Version: 1.4\n## Title: Duplicate\n#comment\nCore.lua\n## : empty key\n"

	got := Fields(text)

	want := map[string]string{
		"Interface": "110002",
		"Title":     "Coffee Auras",
		"Version":   "1.4",
	}
	if len(got) != len(want) {
		t.Fatalf("Fields() returned %d keys, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Fields()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
