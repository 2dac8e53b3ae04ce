package supervise

import (
	"context"
	"syscall"
	"time"

	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/go-go-golems/devserv/pkg/proc"
	"github.com/go-go-golems/devserv/pkg/state"
)

const (
	minPollInterval = 25 * time.Millisecond
	maxPollInterval = 400 * time.Millisecond
)

// signalService sends sig to the direct children of pid and then to pid itself. When pid
// leads its own process group the whole group is signalled. All failures are ignored.
// init and the caller's own process group are never targeted.
func signalService(pid int, sig syscall.Signal) {
	if pid < ledger.MinPID {
		return
	}
	if children, err := proc.Children(pid); err == nil {
		for _, child := range children {
			_ = syscall.Kill(child, sig)
		}
	}
	if pgid, err := syscall.Getpgid(pid); err == nil && ownsGroup(pid, pgid) {
		_ = syscall.Kill(-pgid, sig)
		return
	}
	_ = syscall.Kill(pid, sig)
}

// ownsGroup reports whether pid leads a process group that may be signalled as a whole.
func ownsGroup(pid, pgid int) bool {
	return pgid >= ledger.MinPID && pgid == pid && pgid != syscall.Getpgrp()
}

// waitExit polls liveness with exponential backoff until pid is gone, timeout elapses or
// ctx is done. It reports whether the process exited.
func waitExit(ctx context.Context, pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	interval := minPollInterval
	for {
		if !state.ProcessAlive(pid) {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		if interval > remaining {
			interval = remaining
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return !state.ProcessAlive(pid)
		case <-t.C:
		}
		interval *= 2
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}
}
