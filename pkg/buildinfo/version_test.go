package buildinfo

import (
	"strings"
	"testing"
)

func TestGetPrefersLdflags(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	defer func() { Version, Commit, Date = oldV, oldC, oldD }()

	Version, Commit, Date = "v1.0.0", "abc123", "2026-01-01"
	info := Get()
	if info.Version != "v1.0.0" || info.Commit != "abc123" || info.Date != "2026-01-01" {
		t.Errorf("Get() = %+v, want ldflags values", info)
	}
	if got := UserAgent(); got != "flowboard/v1.0.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestGetDefaults(t *testing.T) {
	info := Get()
	if info.Version == "" || info.Commit == "" || info.Date == "" {
		t.Errorf("Get() left a field empty: %+v", info)
	}
	// test binaries always carry build info
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} ") {
		t.Errorf("Template() = %q", tmpl)
	}
	for _, want := range []string{"version: ", "commit: ", "built: "} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() missing %q", want)
		}
	}
}
