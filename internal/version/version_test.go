package version

import (
	"runtime/debug"
	"testing"
)

func TestVersionDefaults(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// Commit and date are filled by -ldflags and may be empty.
	_ = GitCommit
	_ = BuildDate
}

func TestVersionOverride(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	}()

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2026-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2026-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2026-01-15T10:30:00Z")
	}
}

func TestBuildSettingsBackfillEmptyFieldsOnly(t *testing.T) {
	origCommit, origDate := GitCommit, BuildDate
	defer func() {
		GitCommit, BuildDate = origCommit, origDate
	}()

	GitCommit = "ldflags-commit"
	BuildDate = ""
	applyBuildSettings([]debug.BuildSetting{
		{Key: "vcs.revision", Value: "vcs-commit"},
		{Key: "vcs.time", Value: "2026-02-01T00:00:00Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	if GitCommit != "ldflags-commit" {
		t.Errorf("GitCommit = %q, ldflags value must win", GitCommit)
	}
	if BuildDate != "2026-02-01T00:00:00Z" {
		t.Errorf("BuildDate = %q, want the vcs.time stamp", BuildDate)
	}
}
