package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestSummary(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{"bare", "1.2.3", "", "", "annogen 1.2.3"},
		{"commit", "1.2.3", "abc123", "", "annogen 1.2.3 (abc123)"},
		{"full", "1.2.3-rc1", "abc123", "2024-01-15T10:30:00Z", "annogen 1.2.3-rc1 (abc123) built 2024-01-15T10:30:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
			if got := Summary(false); got != tt.want {
				t.Errorf("Summary(false) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColoredWithoutTerminal(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = true
	Version = "0.3.0-dev"
	if got := Colored(); got != "0.3.0-dev" {
		t.Errorf("Colored() = %q", got)
	}
	Version = "weird"
	if got := Colored(); got != "weird" {
		t.Errorf("Colored() on a non-semver = %q", got)
	}
}
