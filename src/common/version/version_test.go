package version

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

func TestRuntimeStampsGoVersion(t *testing.T) {
	info := New()
	stamped := info.Runtime()
	if stamped.GoVersion != runtime.Version() {
		t.Fatalf("GoVersion = %q", stamped.GoVersion)
	}
	if info.GoVersion != "" {
		t.Fatal("Runtime modified the receiver")
	}
}

func TestFullKeepsDecodedGoVersion(t *testing.T) {
	body := `{"version":"Agora (2026.10) - v1.2.0-4f9f297","release_name":"Agora","release_version":"1.2.0",
		"build_date":"2026-10-01T08:00:00Z","git_commit":"4f9f297","go_version":"go1.23.4"}`
	var server Info
	if err := json.Unmarshal([]byte(body), &server); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	full := server.Full()
	for _, want := range []string{"Agora (2026.10)", "Version:    1.2.0", "Git Commit: 4f9f297", "Go Version: go1.23.4"} {
		if !strings.Contains(full, want) {
			t.Errorf("Full() missing %q:\n%s", want, full)
		}
	}
	if server.Short() != "v1.2.0-4f9f297" {
		t.Errorf("Short() = %q", server.Short())
	}
}

func TestFullFallsBackToRunningGoVersion(t *testing.T) {
	if !strings.HasSuffix(New().Full(), "Go Version: "+runtime.Version()) {
		t.Fatalf("Full() = %q", New().Full())
	}
}
