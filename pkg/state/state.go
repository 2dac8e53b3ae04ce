package state

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

const (
	ClaudeDirName  = ".claude"
	StateDirName   = ".devkit"
	LedgerFilename = "services.pids"
	LogsDirName    = "logs"
	LogExtension   = ".log"
)

// Dir is the per-project state directory holding the ledger and service logs.
func Dir(projectRoot string) string {
	return filepath.Join(projectRoot, ClaudeDirName, StateDirName)
}

func LedgerPath(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), LedgerFilename)
}

func LogsDir(projectRoot string) string {
	return filepath.Join(Dir(projectRoot), LogsDirName)
}

// LogPath is where the combined stdout/stderr of the named service is captured.
func LogPath(projectRoot, service string) string {
	return filepath.Join(LogsDir(projectRoot), service+LogExtension)
}

// ProcessAlive probes pid with signal 0. Zombies count as dead; EPERM counts as alive.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	if isZombie(pid) {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	if stderrors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}

func isZombie(pid int) bool {
	path := fmt.Sprintf("/proc/%d/stat", pid)
	b, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	// Format: pid (comm) state ...
	i := bytes.LastIndexByte(b, ')')
	if i < 0 {
		return false
	}
	fields := bytes.Fields(bytes.TrimSpace(b[i+1:]))
	if len(fields) < 1 || len(fields[0]) < 1 {
		return false
	}
	return fields[0][0] == 'Z'
}
