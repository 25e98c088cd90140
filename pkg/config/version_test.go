package config

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	s := VersionString()
	for _, want := range []string{"curlhub", Version, Commit, runtime.Version()} {
		if !strings.Contains(s, want) {
			t.Errorf("VersionString() = %q, missing %q", s, want)
		}
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version != Version || info.GoVersion != runtime.Version() || info.OS != runtime.GOOS {
		t.Errorf("GetBuildInfo() = %+v", info)
	}
}
