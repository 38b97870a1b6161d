// Package buildinfo reports which flowboard build is running.
//
// Release builds inject the values with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/flowboard/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/flowboard/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/flowboard/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Builds without ldflags (go install, go run) fall back to the module
// version and VCS stamp recorded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set by ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

var readBuildInfo = sync.OnceValue(func() *debug.BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return bi
})

// Get returns the build information, filling ldflags defaults from the
// embedded module and VCS data where available.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi := readBuildInfo()
	if bi == nil {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// String formats the info one field per line.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the --version template for cobra.
func Template() string {
	info := Get()
	return "{{.Name}} " + info.Version + "\n" + info.String() + "\n"
}

// UserAgent is the Server header value of "flowboard serve".
func UserAgent() string {
	return "flowboard/" + Get().Version
}
