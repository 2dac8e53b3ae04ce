package proc

import (
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadStats_Self(t *testing.T) {
	st, err := ReadStats(os.Getpid())
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), st.PID)
	require.Equal(t, os.Getppid(), st.PPID)
	require.Greater(t, st.Threads, 0)
	require.Greater(t, st.MemoryRSS, int64(0))

	started, err := st.StartedAt()
	require.NoError(t, err)
	require.False(t, started.After(time.Now().Add(time.Second)))
}

func TestReadStats_InvalidPID(t *testing.T) {
	_, err := ReadStats(0)
	require.Error(t, err)
}

func TestChildren_FindsShellChild(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 10 & wait")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	defer func() {
		_ = syscall.Kill(-pid, syscall.SIGKILL)
		_ = cmd.Wait()
	}()

	var children []int
	require.Eventually(t, func() bool {
		var err error
		children, err = Children(pid)
		return err == nil && len(children) == 1
	}, 3*time.Second, 20*time.Millisecond)

	st, err := ReadStats(children[0])
	require.NoError(t, err)
	require.Equal(t, pid, st.PPID)
	require.Equal(t, pid, st.PGID)
}

func TestChildren_NoChildren(t *testing.T) {
	cmd := exec.Command("sleep", "10")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	children, err := Children(cmd.Process.Pid)
	require.NoError(t, err)
	require.Empty(t, children)
}
