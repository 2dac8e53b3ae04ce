package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const ProjectRootEnv = "PROJECT_ROOT"

// ConfigFilenames are tried in order inside the devkit directory.
var ConfigFilenames = []string{"config.jsonc", "config.json"}

var ErrNoProjectRoot = errors.New("could not find project root (no .claude/ or .git/ found)")

// ConfigError reports a config file that exists but cannot be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return "invalid " + filepath.Base(e.Path) + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

// File is a loaded devkit config. Lookups use dot paths such as "webhooks.ngrok.domain".
type File struct {
	Path string
	raw  []byte
}

func DevkitDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".claude", ".devkit")
}

// FindProjectRoot returns $PROJECT_ROOT if set, otherwise the closest directory at or
// above start containing .claude/ or .git/.
func FindProjectRoot(start string) (string, error) {
	if env := os.Getenv(ProjectRootEnv); env != "" {
		return filepath.Abs(env)
	}
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range []string{".claude", ".git"} {
			if _, err := os.Stat(filepath.Join(cur, marker)); err == nil {
				return cur, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", ErrNoProjectRoot
		}
		cur = parent
	}
}

// DefaultPath returns the first existing config file under the devkit dir, or "".
func DefaultPath(projectRoot string) string {
	dir := DevkitDir(projectRoot)
	for _, name := range ConfigFilenames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func LoadFromFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if strings.HasSuffix(path, ".jsonc") {
		b = jsonc.ToJSON(b)
	}
	if !gjson.ValidBytes(b) {
		return nil, &ConfigError{Path: path, Err: errors.New("not valid JSON")}
	}
	if !gjson.ParseBytes(b).IsObject() {
		return nil, &ConfigError{Path: path, Err: errors.New("top level must be an object")}
	}
	return &File{Path: path, raw: b}, nil
}

// LoadOptional loads path, or the default config of projectRoot when path is empty.
// A missing file yields an empty config.
func LoadOptional(projectRoot, path string) (*File, error) {
	if path == "" {
		path = DefaultPath(projectRoot)
	}
	if path == "" {
		return &File{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, errors.Wrap(err, "stat config")
	}
	return LoadFromFile(path)
}

func (f *File) Get(path string) gjson.Result {
	if f == nil || len(f.raw) == 0 {
		return gjson.Result{}
	}
	return gjson.GetBytes(f.raw, path)
}

func (f *File) String(path, def string) string {
	r := f.Get(path)
	if !r.Exists() || r.Type == gjson.Null {
		return def
	}
	return r.String()
}

func (f *File) Int(path string, def int) int {
	r := f.Get(path)
	if r.Type != gjson.Number {
		return def
	}
	return int(r.Int())
}

func (f *File) Bool(path string, def bool) bool {
	r := f.Get(path)
	if r.Type != gjson.True && r.Type != gjson.False {
		return def
	}
	return r.Bool()
}
