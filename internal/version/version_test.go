// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		if tt.value == "" {
			t.Errorf("%s should not be empty", tt.name)
		}
		if len(tt.value) > 100 {
			t.Errorf("%s is unreasonably long", tt.name)
		}
	}
}

func TestVersionFormat(t *testing.T) {
	// Version should be dotted like "0.1.0"
	if parts := strings.Split(Version, "."); len(parts) != 3 {
		t.Errorf("expected major.minor.patch, got %q", Version)
	}
}
