package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const sampleJSONC = `{
  "$schema": "./config.schema.json",
  // DEVELOPMENT
  "dev": {
    "command": "bun dev", // comment after a value
    "port": 5000,
    "include_webhooks": false,
  },
  /* webhooks */
  "webhooks": {
    "ngrok": { "domain": "myapp.ngrok.io" },
    "services": {
      "stripe": { "path": "/api/stripe", "provider": "stripe", "events": ["invoice.paid"] },
      "internal": {}
    }
  },
  "project": { "url": "http://example.com//not-a-comment" }
}`

func writeConfig(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := DevkitDir(root)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadOptional_JSONC(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.jsonc", sampleJSONC)

	f, err := LoadOptional(root, "")
	require.NoError(t, err)

	require.Equal(t, Dev{Command: "bun dev", Port: 5000, IncludeWebhooks: false}, f.Dev())
	require.Equal(t, Ngrok{Domain: "myapp.ngrok.io", Port: 5000}, f.Ngrok())
	require.Equal(t, "http://example.com//not-a-comment", f.String("project.url", ""))

	svcs := f.WebhookServices()
	require.Equal(t, []WebhookService{
		{Name: "stripe", Path: "/api/stripe", Provider: "stripe", Events: []string{"invoice.paid"}},
		{Name: "internal", Path: "/api/webhooks/internal", Provider: "custom"},
	}, svcs)
}

func TestLoadOptional_PrefersJSONCOverJSON(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"dev": {"port": 1}}`)
	writeConfig(t, root, "config.jsonc", `{"dev": {"port": 2}}`)

	f, err := LoadOptional(root, "")
	require.NoError(t, err)
	require.Equal(t, 2, f.Dev().Port)
}

func TestLoadOptional_MissingGivesDefaults(t *testing.T) {
	f, err := LoadOptional(t.TempDir(), "")
	require.NoError(t, err)
	require.Equal(t, Dev{Command: DefaultDevCommand, Port: DefaultDevPort, IncludeWebhooks: true}, f.Dev())
	require.Equal(t, Ngrok{Port: DefaultDevPort}, f.Ngrok())
	require.Empty(t, f.WebhookServices())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	root := t.TempDir()
	p := writeConfig(t, root, "config.json", `{"dev": `)

	_, err := LoadFromFile(p)
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	require.Contains(t, err.Error(), "invalid config.json")
}

func TestNgrokPortOverridesDevPort(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"dev": {"port": 4000}, "webhooks": {"ngrok": {"domain": "d", "port": 4100}}}`)
	f, err := LoadOptional(root, "")
	require.NoError(t, err)
	require.Equal(t, Ngrok{Domain: "d", Port: 4100}, f.Ngrok())
}

func TestFindProjectRoot(t *testing.T) {
	t.Setenv(ProjectRootEnv, "")

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	require.Equal(t, root, got)

	t.Setenv(ProjectRootEnv, nested)
	got, err = FindProjectRoot(root)
	require.NoError(t, err)
	require.Equal(t, nested, got)
}

func TestWriteScaffold(t *testing.T) {
	root := t.TempDir()
	opts := ScaffoldOptions{
		Dev:         Dev{Command: "pnpm dev", Port: 4000, IncludeWebhooks: true},
		NgrokDomain: "demo.ngrok.app",
		Webhooks: []WebhookService{
			{Name: "stripe", Path: "/api/webhooks/stripe", Provider: "stripe", Events: []string{"invoice.paid"}},
			{Name: "v1.hooks", Path: "/api/v1", Provider: "custom"},
		},
	}

	path, err := WriteScaffold(root, opts, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(DevkitDir(root), "config.jsonc"), path)

	cfg, err := LoadOptional(root, "")
	require.NoError(t, err)
	require.Equal(t, opts.Dev, cfg.Dev())
	require.Equal(t, Ngrok{Domain: "demo.ngrok.app", Port: 4000}, cfg.Ngrok())
	require.Equal(t, opts.Webhooks, cfg.WebhookServices())

	_, err = WriteScaffold(root, opts, false)
	require.Error(t, err)
	_, err = WriteScaffold(root, ScaffoldOptions{}, true)
	require.NoError(t, err)

	cfg, err = LoadOptional(root, "")
	require.NoError(t, err)
	require.Equal(t, Dev{Command: DefaultDevCommand, Port: DefaultDevPort}, cfg.Dev())
}
