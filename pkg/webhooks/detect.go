package webhooks

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const (
	FromConfig      = "config"
	FromRoute       = "route"
	FromEnv         = "env"
	FromPackageJSON = "package.json"
)

var envFiles = []string{".env", ".env.local", ".env.development"}

// Service is one detected webhook receiver.
type Service struct {
	Name         string   `json:"name"`
	Path         string   `json:"path"`
	Provider     string   `json:"provider"`
	Events       []string `json:"events,omitempty"`
	DetectedFrom string   `json:"detected_from"`
}

// Services keeps detection order; the first source to name a service wins.
type Services []Service

func (s Services) Get(name string) (Service, bool) {
	for _, svc := range s {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// ByProvider returns the services handled by provider, in detection order.
func (s Services) ByProvider(provider string) Services {
	var out Services
	for _, svc := range s {
		if svc.Provider == provider {
			out = append(out, svc)
		}
	}
	return out
}

func (s *Services) add(svc Service) {
	if _, ok := s.Get(svc.Name); ok {
		return
	}
	*s = append(*s, svc)
}

// Detect looks, in order of precedence, at the config's webhooks.services, Next.js
// webhook routes (app router then pages router), env files and package.json.
func Detect(projectRoot string, cfg *config.File) (Services, error) {
	out := Services{}

	for _, cs := range cfg.WebhookServices() {
		out.add(Service{
			Name:         cs.Name,
			Path:         cs.Path,
			Provider:     cs.Provider,
			Events:       cs.Events,
			DetectedFrom: FromConfig,
		})
	}

	routes, err := detectRoutes(projectRoot)
	if err != nil {
		return nil, err
	}
	for _, name := range routes {
		out.add(Service{
			Name:         name,
			Path:         "/api/webhooks/" + name,
			Provider:     providerFor(name),
			DetectedFrom: FromRoute,
		})
	}

	envVars := readEnvNames(projectRoot)
	for _, p := range Providers {
		for _, pattern := range p.EnvPatterns {
			if envVars[pattern] {
				out.add(Service{Name: p.Name, Path: p.DefaultPath, Provider: p.Name, DetectedFrom: FromEnv})
				break
			}
		}
	}

	deps := readPackageDeps(projectRoot)
	for _, p := range Providers {
		for _, dep := range p.Deps {
			if deps[dep] {
				out.add(Service{Name: p.Name, Path: p.DefaultPath, Provider: p.Name, DetectedFrom: FromPackageJSON})
				break
			}
		}
	}

	return out, nil
}

func providerFor(name string) string {
	if _, ok := LookupProvider(name); ok {
		return name
	}
	return "custom"
}

func detectRoutes(projectRoot string) ([]string, error) {
	var names []string

	appDir := filepath.Join(projectRoot, "app", "api", "webhooks")
	entries, err := readDirIfExists(appDir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(appDir, e.Name(), "route.ts")); err == nil {
			names = append(names, e.Name())
		}
	}

	pagesDir := filepath.Join(projectRoot, "pages", "api", "webhooks")
	entries, err = readDirIfExists(pagesDir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".ts" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".ts"))
	}
	return names, nil
}

func readDirIfExists(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func readEnvNames(projectRoot string) map[string]bool {
	names := map[string]bool{}
	for _, name := range envFiles {
		p := filepath.Join(projectRoot, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vars, err := godotenv.Read(p)
		if err != nil {
			log.Debug().Err(err).Str("file", p).Msg("skipping unparsable env file")
			continue
		}
		for k := range vars {
			names[k] = true
		}
	}
	return names
}

func readPackageDeps(projectRoot string) map[string]bool {
	deps := map[string]bool{}
	b, err := os.ReadFile(filepath.Join(projectRoot, "package.json"))
	if err != nil || !gjson.ValidBytes(b) {
		return deps
	}
	pkg := gjson.ParseBytes(b)
	for _, section := range []string{"dependencies", "devDependencies"} {
		pkg.Get(section).ForEach(func(key, _ gjson.Result) bool {
			deps[key.String()] = true
			return true
		})
	}
	return deps
}
