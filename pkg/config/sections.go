package config

import (
	"github.com/tidwall/gjson"
)

const (
	DefaultDevCommand = "npm run dev"
	DefaultDevPort    = 3000
)

// Dev is the "dev" section: how to run the development server.
type Dev struct {
	Command         string `json:"command"`
	Port            int    `json:"port"`
	IncludeWebhooks bool   `json:"include_webhooks"`
}

// Ngrok is the "webhooks.ngrok" section.
type Ngrok struct {
	Domain string `json:"domain,omitempty"`
	Port   int    `json:"port"`
}

// WebhookService is one entry of "webhooks.services".
type WebhookService struct {
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Provider string   `json:"provider"`
	Events   []string `json:"events,omitempty"`
}

func (f *File) Dev() Dev {
	return Dev{
		Command:         f.String("dev.command", DefaultDevCommand),
		Port:            f.Int("dev.port", DefaultDevPort),
		IncludeWebhooks: f.Bool("dev.include_webhooks", true),
	}
}

// Ngrok falls back to the dev server port when no tunnel port is configured.
func (f *File) Ngrok() Ngrok {
	return Ngrok{
		Domain: f.String("webhooks.ngrok.domain", ""),
		Port:   f.Int("webhooks.ngrok.port", f.Dev().Port),
	}
}

// WebhookServices returns the configured services in file order.
func (f *File) WebhookServices() []WebhookService {
	var out []WebhookService
	f.Get("webhooks.services").ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		svc := WebhookService{
			Name:     name,
			Path:     "/api/webhooks/" + name,
			Provider: "custom",
		}
		if p := value.Get("path"); p.Exists() {
			svc.Path = p.String()
		}
		if p := value.Get("provider"); p.Exists() {
			svc.Provider = p.String()
		}
		for _, ev := range value.Get("events").Array() {
			svc.Events = append(svc.Events, ev.String())
		}
		out = append(out, svc)
		return true
	})
	return out
}
