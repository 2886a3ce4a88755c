package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hioki-daichi/sharedl/remote"
)

func TestDummyServer_loadShare(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644); err != nil {
		t.Fatalf("err %s", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("err %s", err)
	}

	cases := map[string]struct {
		plain       bool
		expectedKey bool
	}{
		"encrypted": {plain: false, expectedKey: true},
		"plain":     {plain: true, expectedKey: false},
	}

	for n, c := range cases {
		c := c
		t.Run(n, func(t *testing.T) {
			share, err := loadShare(dir, c.plain)
			if err != nil {
				t.Fatalf("err %s", err)
			}

			if (share.Key != nil) != c.expectedKey {
				t.Errorf("unexpected key presence: expected: %t", c.expectedKey)
			}

			files := 0
			for _, e := range share.Entries {
				if e.Kind == remote.KindFile {
					files++
					if e.Name != "a.txt" || string(e.Content) != "alpha" || e.Parent != "root" {
						t.Errorf("unexpected entry: %+v", e)
					}
				}
			}
			if files != 1 {
				t.Errorf("unexpected file count: expected: 1 actual: %d", files)
			}
		})
	}
}

func TestDummyServer_loadShare_MissingDir(t *testing.T) {
	if _, err := loadShare(filepath.Join(t.TempDir(), "nope"), true); err == nil {
		t.Error("expected error")
	}
}
