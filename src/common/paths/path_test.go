package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("BAZAAR_DATA", "/srv/bazaar")

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.bazaard/bazaar.db", filepath.Join(home, ".bazaard", "bazaar.db")},
		{"$BAZAAR_DATA/images", "/srv/bazaar/images"},
		{"/var/lib/bazaar", "/var/lib/bazaar"},
		{"~other/file", "~other/file"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Expand(tt.in); got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnsureDirAndExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "bazaar.db")
	if Exists(path) {
		t.Fatal("file should not exist yet")
	}
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !Exists(filepath.Dir(path)) {
		t.Fatal("parent directory was not created")
	}
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Fatal("Exists should report the new file")
	}
}
