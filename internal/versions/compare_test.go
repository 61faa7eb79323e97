package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNewerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		newVersion string
		oldVersion string
		expected   bool
	}{
		// Valid semver comparisons
		{name: "newer major version", newVersion: "2.0.0", oldVersion: "1.0.0", expected: true},
		{name: "newer minor version", newVersion: "1.2.0", oldVersion: "1.1.0", expected: true},
		{name: "newer patch version", newVersion: "1.0.2", oldVersion: "1.0.1", expected: true},
		{name: "older version", newVersion: "1.0.0", oldVersion: "2.0.0", expected: false},
		{name: "equal versions", newVersion: "1.0.0", oldVersion: "1.0.0", expected: false},
		{name: "prerelease vs release", newVersion: "1.0.0", oldVersion: "1.0.0-alpha", expected: true},
		// Loose two-part versions as reported for installed software
		{name: "software style newer", newVersion: "24.01", oldVersion: "23.01", expected: true},
		{name: "software style older", newVersion: "23.01", oldVersion: "24.01", expected: false},
		{name: "v prefix", newVersion: "v2.0.0", oldVersion: "v1.0.0", expected: true},
		// Fallback to string comparison for non-semver
		{name: "non-semver newer", newVersion: "build-b", oldVersion: "build-a", expected: true},
		{name: "non-semver older", newVersion: "build-a", oldVersion: "build-b", expected: false},
		{name: "mixed semver and non-semver", newVersion: "not-a-version", oldVersion: "1.0.0", expected: true},
		{name: "empty new version", newVersion: "", oldVersion: "1.0.0", expected: false},
		{name: "both empty", newVersion: "", oldVersion: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, IsNewerVersion(tt.newVersion, tt.oldVersion))
		})
	}
}
