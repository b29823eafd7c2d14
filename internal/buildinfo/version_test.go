package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestDevVersion(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		expected string
	}{
		{"no vcs info", nil, "dev"},
		{"short revision", []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}}, "dev-abc123"},
		{
			"long revision truncated",
			[]debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef0123"}},
			"dev-0123456789ab",
		},
		{
			"dirty tree",
			[]debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
			"dev-abc123-dirty",
		},
		{"modified without revision", []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}}, "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := devVersion(&debug.BuildInfo{Settings: tt.settings})
			if got != tt.expected {
				t.Errorf("devVersion() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func TestVersion(t *testing.T) {
	t.Run("linker flag wins", func(t *testing.T) {
		version = "v9.9.9"
		t.Cleanup(func() { version = "" })
		stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v1.0.0"}}, true)
		if got := Version(); got != "v9.9.9" {
			t.Errorf("Version() = %q", got)
		}
	})

	t.Run("module version", func(t *testing.T) {
		stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v1.0.0"}}, true)
		if got := Version(); got != "v1.0.0" {
			t.Errorf("Version() = %q", got)
		}
	})

	t.Run("devel falls back to vcs", func(t *testing.T) {
		stubBuildInfo(t, &debug.BuildInfo{
			Main:     debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
		}, true)
		if got := Version(); got != "dev-abc" {
			t.Errorf("Version() = %q", got)
		}
	})

	t.Run("no build info", func(t *testing.T) {
		stubBuildInfo(t, nil, false)
		if got := Version(); got != "unknown" {
			t.Errorf("Version() = %q", got)
		}
	})
}

func TestUserAgent(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}, true)
	if got := UserAgent(); !strings.HasPrefix(got, "coffeeupdate/v1.2.3 (") {
		t.Errorf("UserAgent() = %q", got)
	}
}
