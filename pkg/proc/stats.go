// Package proc provides utilities for reading process information from /proc.
package proc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// clockTicks is USER_HZ, 100 on every Linux platform we run on.
const clockTicks = 100

// Stats contains process statistics read from /proc.
type Stats struct {
	PID        int     `json:"pid"`
	PPID       int     `json:"ppid"`
	PGID       int     `json:"pgid"`
	State      string  `json:"state"`       // R, S, D, Z, T, ...
	Threads    int     `json:"threads"`     // Number of threads
	MemoryMB   int64   `json:"memory_mb"`   // Resident memory in megabytes
	MemoryRSS  int64   `json:"memory_rss"`  // Resident set size in bytes
	CPUSeconds float64 `json:"cpu_seconds"` // user+system time consumed so far
	StartTime  int64   `json:"start_time"`  // jiffies since boot
}

// procStat holds the parsed /proc/[pid]/stat fields we use.
type procStat struct {
	state     byte
	ppid      int
	pgrp      int
	utime     uint64
	stime     uint64
	threads   int
	startTime uint64
	rss       int64 // pages
}

// ReadStats reads process statistics for a single PID.
func ReadStats(pid int) (*Stats, error) {
	if pid <= 0 {
		return nil, errors.New("invalid PID")
	}

	ps, err := readProcStat(pid)
	if err != nil {
		return nil, errors.Wrap(err, "read /proc/stat")
	}

	memRSS := ps.rss * int64(os.Getpagesize())
	return &Stats{
		PID:        pid,
		PPID:       ps.ppid,
		PGID:       ps.pgrp,
		State:      string(ps.state),
		Threads:    ps.threads,
		MemoryRSS:  memRSS,
		MemoryMB:   memRSS / (1024 * 1024),
		CPUSeconds: float64(ps.utime+ps.stime) / clockTicks,
		StartTime:  int64(ps.startTime),
	}, nil
}

// Children lists the PIDs whose parent is pid, in /proc directory order.
func Children(pid int) ([]int, error) {
	if pid <= 0 {
		return nil, errors.New("invalid PID")
	}
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, errors.Wrap(err, "read /proc")
	}

	var out []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		candidate, err := strconv.Atoi(e.Name())
		if err != nil || candidate == pid {
			continue
		}
		ps, err := readProcStat(candidate)
		if err != nil {
			// exited between ReadDir and now
			continue
		}
		if ps.ppid == pid {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// readProcStat parses /proc/[pid]/stat.
func readProcStat(pid int) (*procStat, error) {
	path := filepath.Join("/proc", strconv.Itoa(pid), "stat")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read stat file")
	}

	// Format: pid (comm) state ppid pgrp session tty_nr tpgid flags minflt cminflt
	//         majflt cmajflt utime stime cutime cstime priority nice num_threads
	//         itrealvalue starttime vsize rss ...
	//
	// comm can contain spaces and parentheses, so split after the last ')'.
	content := string(data)
	closeParen := strings.LastIndex(content, ")")
	if closeParen < 0 {
		return nil, errors.New("malformed stat file: no closing paren")
	}
	fields := strings.Fields(strings.TrimSpace(content[closeParen+1:]))
	if len(fields) < 22 {
		return nil, fmt.Errorf("malformed stat file: expected 22+ fields, got %d", len(fields))
	}

	// Indices are 0-based after comm: 0 state, 1 ppid, 2 pgrp, 11 utime, 12 stime,
	// 17 num_threads, 19 starttime, 21 rss.
	ps := &procStat{state: fields[0][0]}

	var parseErr error
	if ps.ppid, parseErr = strconv.Atoi(fields[1]); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse ppid")
	}
	if ps.pgrp, parseErr = strconv.Atoi(fields[2]); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse pgrp")
	}
	if ps.utime, parseErr = strconv.ParseUint(fields[11], 10, 64); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse utime")
	}
	if ps.stime, parseErr = strconv.ParseUint(fields[12], 10, 64); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse stime")
	}
	if ps.threads, parseErr = strconv.Atoi(fields[17]); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse num_threads")
	}
	if ps.startTime, parseErr = strconv.ParseUint(fields[19], 10, 64); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse starttime")
	}
	if ps.rss, parseErr = strconv.ParseInt(fields[21], 10, 64); parseErr != nil {
		return nil, errors.Wrap(parseErr, "parse rss")
	}

	return ps, nil
}

// GetBootTime returns the system boot time.
func GetBootTime() (time.Time, error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return time.Time{}, errors.Wrap(err, "open /proc/stat")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "btime ") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		btime, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return time.Time{}, errors.Wrap(err, "parse btime")
		}
		return time.Unix(btime, 0), nil
	}

	return time.Time{}, errors.New("btime not found in /proc/stat")
}

// StartedAt converts the start time in s to wall-clock time.
func (s *Stats) StartedAt() (time.Time, error) {
	bootTime, err := GetBootTime()
	if err != nil {
		return time.Time{}, err
	}
	return bootTime.Add(time.Duration(s.StartTime/clockTicks) * time.Second), nil
}
