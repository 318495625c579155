package core

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// WorkspaceLocker serializes all graph and timeline operations on one
// workspace. Edge mutations and cascades both read and write the same task
// and edge set, so they must not interleave.
type WorkspaceLocker interface {
	// Acquire takes the exclusive lock for the workspace and returns a
	// release function. It fails with ErrWorkspaceBusy once the retry
	// budget is exhausted.
	Acquire(workspace string) (release func() error, err error)
}

// flockWorkspaceLocker implements WorkspaceLocker with an advisory flock on
// workspaces/<name>/.lock. The lock is taken non-blocking with a bounded
// retry loop so contention surfaces as an error instead of an open-ended
// wait.
type flockWorkspaceLocker struct {
	basePath   string
	retries    int
	retryDelay time.Duration
}

// NewWorkspaceLocker creates a WorkspaceLocker rooted at basePath. retries
// and retryDelay bound the wait for a contended lock; retries <= 0 means a
// single attempt.
func NewWorkspaceLocker(basePath string, retries int, retryDelay time.Duration) WorkspaceLocker {
	return &flockWorkspaceLocker{
		basePath:   basePath,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

func (l *flockWorkspaceLocker) Acquire(workspace string) (func() error, error) {
	dir := filepath.Join(l.basePath, "workspaces", workspace)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("locking workspace %s: creating directory: %w", workspace, err)
	}

	f, err := os.OpenFile(filepath.Join(dir, ".lock"), os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("locking workspace %s: opening lock file: %w", workspace, err)
	}

	attempts := l.retries
	if attempts < 0 {
		attempts = 0
	}
	for attempt := 0; ; attempt++ {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if err != syscall.EWOULDBLOCK {
			f.Close()
			return nil, fmt.Errorf("locking workspace %s: %w", workspace, err)
		}
		if attempt >= attempts {
			f.Close()
			return nil, fmt.Errorf("workspace %s: %w", workspace, ErrWorkspaceBusy)
		}
		time.Sleep(l.retryDelay)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
