package webhooks

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetect_Precedence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(config.DevkitDir(root), "config.json"),
		`{"webhooks": {"services": {"stripe": {"path": "/hooks/stripe", "provider": "stripe"}}}}`)
	// route for stripe is shadowed by config; clerk and custom come from routes
	writeFile(t, filepath.Join(root, "app", "api", "webhooks", "stripe", "route.ts"), "")
	writeFile(t, filepath.Join(root, "app", "api", "webhooks", "clerk", "route.ts"), "")
	writeFile(t, filepath.Join(root, "app", "api", "webhooks", "norroute", "README.md"), "")
	writeFile(t, filepath.Join(root, "pages", "api", "webhooks", "github.ts"), "")
	writeFile(t, filepath.Join(root, ".env.local"), "LIVEKIT_API_KEY=abc\nCLERK_SECRET_KEY=x\n")
	writeFile(t, filepath.Join(root, "package.json"), `{"dependencies": {"resend": "^1.0.0"}, "devDependencies": {"stripe": "^12"}}`)

	cfg, err := config.LoadOptional(root, "")
	require.NoError(t, err)

	got, err := Detect(root, cfg)
	require.NoError(t, err)

	require.Equal(t, Services{
		{Name: "stripe", Path: "/hooks/stripe", Provider: "stripe", DetectedFrom: FromConfig},
		{Name: "clerk", Path: "/api/webhooks/clerk", Provider: "clerk", DetectedFrom: FromRoute},
		{Name: "github", Path: "/api/webhooks/github", Provider: "custom", DetectedFrom: FromRoute},
		{Name: "livekit", Path: "/api/webhooks/livekit", Provider: "livekit", DetectedFrom: FromEnv},
		{Name: "resend", Path: "/api/webhooks/resend", Provider: "resend", DetectedFrom: FromPackageJSON},
	}, got)

	require.Len(t, got.ByProvider("stripe"), 1)
	_, ok := got.Get("norroute")
	require.False(t, ok)
}

func TestDetect_EmptyProject(t *testing.T) {
	got, err := Detect(t.TempDir(), &config.File{})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestEventsAndDashboard(t *testing.T) {
	require.Contains(t, Events("stripe"), "invoice.paid")
	require.Empty(t, Events("custom"))
	require.Equal(t, "https://dashboard.stripe.com/webhooks", DashboardURL("stripe"))
	require.Empty(t, DashboardURL("custom"))
}

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

func TestChecker_Status(t *testing.T) {
	fr := &fakeRunner{
		outputs: map[string]string{
			"ngrok version":        "ngrok version 3.5.0\n",
			"stripe version":       "stripe version 1.19.0\n",
			"stripe config --list": "test_mode_api_key = 'sk_test_123'\n",
		},
	}
	c := &Checker{Run: fr.run}
	ngrok, stripe := c.Status(context.Background())
	require.Equal(t, CLIStatus{Installed: true, Message: "ngrok ngrok version 3.5.0"}, ngrok)
	require.Equal(t, CLIStatus{Installed: true, Message: "Stripe CLI stripe version 1.19.0"}, stripe)
	require.Len(t, fr.calls, 3)
}

func TestChecker_NotInstalledAndNotLoggedIn(t *testing.T) {
	fr := &fakeRunner{
		outputs: map[string]string{"stripe version": "1.19.0"},
		errs: map[string]error{
			"ngrok version": errors.Wrap(exec.ErrNotFound, "exec"),
		},
	}
	c := &Checker{Run: fr.run}

	ngrok := c.Ngrok(context.Background())
	require.False(t, ngrok.Installed)
	require.Contains(t, ngrok.Message, "not installed")

	stripe := c.Stripe(context.Background())
	require.False(t, stripe.Installed)
	require.Equal(t, "Stripe CLI 1.19.0 (not logged in - run: stripe login)", stripe.Message)
}
