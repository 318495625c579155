package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	dir := t.TempDir()
	locker := NewWorkspaceLocker(dir, 0, 0)

	release, err := locker.Acquire("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "workspaces", "default", ".lock")); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
}

func TestAcquireContended(t *testing.T) {
	dir := t.TempDir()
	holder := NewWorkspaceLocker(dir, 0, 0)
	contender := NewWorkspaceLocker(dir, 2, time.Millisecond)

	release, err := holder.Acquire("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer release()

	_, err = contender.Acquire("default")
	if !errors.Is(err, ErrWorkspaceBusy) {
		t.Fatalf("expected ErrWorkspaceBusy, got %v", err)
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	dir := t.TempDir()
	locker := NewWorkspaceLocker(dir, 0, 0)

	release, err := locker.Acquire("default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	release2, err := locker.Acquire("default")
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	release2()
}

func TestAcquireIndependentWorkspaces(t *testing.T) {
	dir := t.TempDir()
	locker := NewWorkspaceLocker(dir, 0, 0)

	r1, err := locker.Acquire("alpha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r1()

	// A different workspace must not contend.
	r2, err := locker.Acquire("beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r2()
}
