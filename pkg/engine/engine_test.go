package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/webhooks"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	ngrok, stripe bool
}

func (s stubChecker) Ngrok(context.Context) webhooks.CLIStatus {
	return webhooks.CLIStatus{Installed: s.ngrok, Message: "ngrok"}
}

func (s stubChecker) Stripe(context.Context) webhooks.CLIStatus {
	return webhooks.CLIStatus{Installed: s.stripe, Message: "stripe"}
}

func loadConfig(t *testing.T, content string) *config.File {
	t.Helper()
	root := t.TempDir()
	dir := config.DevkitDir(root)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.jsonc"), []byte(content), 0o644))
	cfg, err := config.LoadOptional(root, "")
	require.NoError(t, err)
	return cfg
}

var stripeDetected = webhooks.Services{
	{Name: "stripe", Path: "/api/webhooks/stripe", Provider: "stripe", DetectedFrom: webhooks.FromRoute},
}

func TestResolve_DevServerOnlyWhenWebhooksExcluded(t *testing.T) {
	cfg := loadConfig(t, `{"dev": {"include_webhooks": false}, "webhooks": {"ngrok": {"domain": "test.ngrok.io"}}}`)
	plan := Resolve(context.Background(), cfg, stripeDetected, stubChecker{true, true})
	require.Equal(t, LaunchPlan{
		Port:     3000,
		Services: []PlannedService{{Terminal: 1, Command: "npm run dev", Description: DescDevServer}},
	}, plan)
}

func TestResolve_AllServices(t *testing.T) {
	cfg := loadConfig(t, `{
		"dev": {"command": "bun dev", "port": 5000},
		// tunnel
		"webhooks": {"ngrok": {"domain": "test.ngrok.io"}}
	}`)
	plan := Resolve(context.Background(), cfg, stripeDetected, stubChecker{true, true})
	require.Equal(t, 5000, plan.Port)
	require.Equal(t, []PlannedService{
		{Terminal: 1, Command: "bun dev", Description: DescDevServer},
		{Terminal: 2, Command: "ngrok http 5000 --domain test.ngrok.io", Description: DescNgrok},
		{Terminal: 3, Command: "stripe listen --forward-to http://localhost:5000/api/webhooks/stripe", Description: DescStripe},
	}, plan.Services)
}

func TestResolve_SkipsUnavailableCLIs(t *testing.T) {
	cfg := loadConfig(t, `{"webhooks": {"ngrok": {"domain": "test.ngrok.io"}}}`)
	plan := Resolve(context.Background(), cfg, stripeDetected, stubChecker{false, false})
	require.Len(t, plan.Services, 1)

	// no domain, no stripe receiver: nothing beyond the dev server even with CLIs present
	cfg = loadConfig(t, `{}`)
	plan = Resolve(context.Background(), cfg, nil, stubChecker{true, true})
	require.Len(t, plan.Services, 1)
}

func TestParsePlan_ListAndObject(t *testing.T) {
	plan, err := ParsePlan([]byte(`[{"description": "Development server", "command": "sleep 100", "terminal": 1}]`))
	require.NoError(t, err)
	require.Equal(t, LaunchPlan{Services: []PlannedService{{Description: DescDevServer, Command: "sleep 100", Terminal: 1}}}, plan)

	plan, err = ParsePlan([]byte("port: 4000\nservices:\n  - description: ngrok tunnel\n    command: sleep 100\n    terminal: 2\n"))
	require.NoError(t, err)
	require.Equal(t, 4000, plan.Port)
	require.Equal(t, []PlannedService{{Description: DescNgrok, Command: "sleep 100", Terminal: 2}}, plan.Services)

	plan, err = ParsePlan(nil)
	require.NoError(t, err)
	require.Empty(t, plan.Services)
}

func TestParsePlan_Errors(t *testing.T) {
	_, err := ParsePlan([]byte(`"just a string"`))
	require.Error(t, err)

	_, err = ParsePlan([]byte(`[{"description": "x"}]`))
	require.Error(t, err)
}

func TestLoadPlanFile_Stdin(t *testing.T) {
	plan, err := LoadPlanFile("-", strings.NewReader(`{"port": 1, "services": [{"command": "true"}]}`))
	require.NoError(t, err)
	require.Equal(t, 1, plan.Port)
	require.Len(t, plan.Services, 1)
}

func TestLoadPlanFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services.toml")
	require.NoError(t, os.WriteFile(path, []byte(`port = 4000

[[services]]
description = "Development server"
command = "npm run dev"
terminal = 1

[[services]]
description = "ngrok tunnel"
command = "ngrok http 4000"
terminal = 2
`), 0o644))

	plan, err := LoadPlanFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, 4000, plan.Port)
	require.Equal(t, []PlannedService{
		{Description: DescDevServer, Command: "npm run dev", Terminal: 1},
		{Description: DescNgrok, Command: "ngrok http 4000", Terminal: 2},
	}, plan.Services)

	_, err = ParsePlanTOML([]byte("[[services]]\ndescription = \"x\"\n"))
	require.Error(t, err)
}

func TestServiceSpecs_NamesAndLogs(t *testing.T) {
	plan := LaunchPlan{Services: []PlannedService{
		{Terminal: 1, Description: DescDevServer, Command: "npm run dev"},
		{Terminal: 2, Description: DescNgrok, Command: "ngrok http 3000"},
		{Terminal: 3, Description: DescStripe, Command: "stripe listen"},
		{Terminal: 4, Description: "Queue Worker!", Command: "node worker.js"},
		{Terminal: 5, Description: "ngrok tunnel", Command: "ngrok http 3001"},
		{Terminal: 0, Description: "", Command: "true"},
	}}
	specs := ServiceSpecs(plan, "/p")

	var names []string
	for _, s := range specs {
		names = append(names, s.Name)
		require.Equal(t, "/p", s.Cwd)
		require.Equal(t, "/p/.claude/.devkit/logs/"+s.Name+".log", s.LogPath)
	}
	require.Equal(t, []string{"dev", "ngrok", "stripe", "queue-worker", "ngrok-5", "service"}, names)
}

func TestResolveURLs(t *testing.T) {
	cfg := loadConfig(t, `{"dev": {"port": 3000}}`)
	urls := ResolveURLs(cfg, stripeDetected)
	require.Equal(t, "http://localhost:3000", urls.Localhost)
	require.Empty(t, urls.Ngrok)
	require.Equal(t, []WebhookURL{{
		Service:   "stripe",
		URL:       "http://localhost:3000/api/webhooks/stripe",
		Dashboard: "https://dashboard.stripe.com/webhooks",
		Provider:  "stripe",
	}}, urls.Webhooks)

	cfg = loadConfig(t, `{"webhooks": {"ngrok": {"domain": "myapp.ngrok.io"}}}`)
	urls = ResolveURLs(cfg, webhooks.Services{{Name: "hook", Path: "/api/webhooks/hook", Provider: "custom"}})
	require.Equal(t, "https://myapp.ngrok.io", urls.Ngrok)
	require.Equal(t, "https://myapp.ngrok.io/api/webhooks/hook", urls.Webhooks[0].URL)
	require.Empty(t, urls.Webhooks[0].Dashboard)
}
