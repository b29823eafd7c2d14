// Package buildinfo reports the coffeeupdate version from linker flags or
// Go build metadata.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version is set at release time with
// -ldflags "-X github.com/coffeeauras/coffeeupdate/internal/buildinfo.version=v1.2.3".
var version string

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Version returns the version string for the current build.
//
// In order of preference:
//   - the linker-provided version
//   - the module version for `go install ...@vX.Y.Z`
//   - "dev-<hash>[-dirty]" from VCS stamping
//   - "dev" without VCS info, "unknown" without build info
func Version() string {
	if version != "" {
		return version
	}

	info, ok := readBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return devVersion(info)
}

// UserAgent returns the User-Agent sent to the add-on CDN.
func UserAgent() string {
	return fmt.Sprintf("coffeeupdate/%s (%s/%s)", Version(), runtime.GOOS, runtime.GOARCH)
}

// devVersion builds "dev-<hash>[-dirty]" from VCS settings, or "dev".
func devVersion(info *debug.BuildInfo) string {
	var revision string
	var modified bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}

	v := "dev-" + revision
	if modified {
		v += "-dirty"
	}
	return v
}
