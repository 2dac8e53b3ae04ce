package supervise

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
	"github.com/pkg/errors"
)

var envAssignment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// Words the shell resolves itself; a command starting with one of these is not checked.
var shellWords = map[string]bool{
	"cd": true, "exec": true, "export": true, "source": true, ".": true, "eval": true,
	"if": true, "for": true, "while": true, "until": true, "case": true, "set": true,
	"(": true, "{": true, "!": true, "echo": true, "test": true, "[": true, "true": true,
	"false": true, ":": true, "trap": true, "ulimit": true, "umask": true, "wait": true,
}

// checkExecutable resolves the program a shell command line would run, so that a
// missing binary is reported as a spawn failure instead of a shell that exits 127.
func checkExecutable(command, dir string) error {
	program := firstProgram(command)
	if program == "" || shellWords[program] || strings.ContainsAny(program, "$`(){};|&<>*?") {
		return nil
	}
	if strings.ContainsRune(program, '/') {
		if !filepath.IsAbs(program) {
			program = filepath.Join(dir, program)
		}
		info, err := os.Stat(program)
		if err != nil {
			return errors.Wrapf(err, "command not found: %s", program)
		}
		if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
			return errors.Errorf("not executable: %s", program)
		}
		return nil
	}
	if _, err := exec.LookPath(program); err != nil {
		return errors.Wrapf(err, "command not found: %s", program)
	}
	return nil
}

func firstProgram(command string) string {
	words, err := shlex.Split(command)
	if err != nil {
		// unbalanced quotes and the like: leave it to the shell
		words = strings.Fields(command)
	}
	for _, w := range words {
		if envAssignment.MatchString(w) {
			continue
		}
		return w
	}
	return ""
}
