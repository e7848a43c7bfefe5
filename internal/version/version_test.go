package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "v"+Version) {
		t.Errorf("Expected %q to start with v%s", s, Version)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("Expected %q to mention commit %s", s, GitCommit)
	}
}
