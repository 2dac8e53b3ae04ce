package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const scaffoldHeader = "// devserv devkit config. Comments and trailing commas are allowed.\n"

// ScaffoldOptions are the values written into a new devkit config.
type ScaffoldOptions struct {
	Dev         Dev
	NgrokDomain string
	Webhooks    []WebhookService
}

// Scaffold renders a devkit config document for opts.
func Scaffold(opts ScaffoldOptions) ([]byte, error) {
	if opts.Dev.Command == "" {
		opts.Dev.Command = DefaultDevCommand
	}
	if opts.Dev.Port <= 0 {
		opts.Dev.Port = DefaultDevPort
	}

	b := []byte("{}")
	var err error
	set := func(path string, v any) {
		if err != nil {
			return
		}
		b, err = sjson.SetBytes(b, path, v)
	}

	set("dev.command", opts.Dev.Command)
	set("dev.port", opts.Dev.Port)
	set("dev.include_webhooks", opts.Dev.IncludeWebhooks)
	if opts.NgrokDomain != "" {
		set("webhooks.ngrok.domain", opts.NgrokDomain)
	}
	for _, svc := range opts.Webhooks {
		key := "webhooks.services." + escapeKey(svc.Name)
		set(key+".path", svc.Path)
		set(key+".provider", svc.Provider)
		if len(svc.Events) > 0 {
			set(key+".events", svc.Events)
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, "build config")
	}

	out := pretty.PrettyOptions(b, &pretty.Options{Width: 80, Indent: "  "})
	return append([]byte(scaffoldHeader), out...), nil
}

// WriteScaffold writes a new config.jsonc under the devkit dir of projectRoot. An existing
// config is only replaced when overwrite is set.
func WriteScaffold(projectRoot string, opts ScaffoldOptions, overwrite bool) (string, error) {
	if existing := DefaultPath(projectRoot); existing != "" && !overwrite {
		return "", errors.Errorf("config already exists: %s", existing)
	}
	b, err := Scaffold(opts)
	if err != nil {
		return "", err
	}
	path := filepath.Join(DevkitDir(projectRoot), ConfigFilenames[0])
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "mkdir devkit dir")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", errors.Wrap(err, "write config")
	}
	return path, nil
}

func escapeKey(k string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(k)
}
