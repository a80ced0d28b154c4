package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCleanupSweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := touch(t, dir, "pnet_failure_old.png", now.Add(-8*24*time.Hour))
	fresh := touch(t, dir, "pnet_failure_new.png", now.Add(-time.Hour))
	kept := touch(t, dir, "notes.txt", now.Add(-30*24*time.Hour))

	sweep := &CleanupSweep{Dir: dir, now: func() time.Time { return now }}
	if err := sweep.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old screenshot not removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("recent screenshot removed")
	}
	if _, err := os.Stat(kept); err != nil {
		t.Error("non-screenshot file removed")
	}
}

func TestCleanupSweep_MissingDir(t *testing.T) {
	sweep := &CleanupSweep{Dir: filepath.Join(t.TempDir(), "never-created")}
	if err := sweep.Run(context.Background()); err != nil {
		t.Fatalf("missing dir should be fine: %v", err)
	}
}
