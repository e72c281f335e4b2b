package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestFromVCS(t *testing.T) {
	tests := []struct {
		name        string
		settings    map[string]string
		wantVersion string
		wantCommit  string
	}{
		{
			name: "clean checkout",
			settings: map[string]string{
				"vcs.revision": "0123456789abcdef",
				"vcs.time":     "2026-03-14T09:26:53Z",
			},
			wantVersion: "dev-20260314",
			wantCommit:  "0123456",
		},
		{
			name: "dirty tree",
			settings: map[string]string{
				"vcs.revision": "abc",
				"vcs.modified": "true",
			},
			wantCommit: "abc-dirty",
		},
		{
			name:     "no vcs info",
			settings: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldVersion, oldCommit := Version, Commit
			defer func() { Version, Commit = oldVersion, oldCommit }()

			Version, Commit = "", ""
			fromVCS(tt.settings)

			if Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", Version, tt.wantVersion)
			}
			if Commit != tt.wantCommit {
				t.Errorf("Commit = %q, want %q", Commit, tt.wantCommit)
			}
		})
	}
}

func TestFromVCS_KeepsLinkerValues(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	defer func() { Version, Commit = oldVersion, oldCommit }()

	Version, Commit = "v1.2.3", "feedbee"
	fromVCS(map[string]string{"vcs.revision": "0123456789", "vcs.time": "2026-03-14T09:26:53Z"})

	if Version != "v1.2.3" || Commit != "feedbee" {
		t.Errorf("fromVCS overwrote linker values: %s %s", Version, Commit)
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if info.Version == "" || info.Commit == "" {
		t.Errorf("Info() = %+v, want populated version and commit", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !strings.Contains(Full(), info.Commit) {
		t.Errorf("Full() = %q should contain commit", Full())
	}
}
