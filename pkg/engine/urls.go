package engine

import (
	"fmt"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/webhooks"
)

type WebhookURL struct {
	Service   string `json:"service"`
	URL       string `json:"url"`
	Dashboard string `json:"dashboard"`
	Provider  string `json:"provider"`
}

type URLs struct {
	Localhost string       `json:"localhost"`
	Ngrok     string       `json:"ngrok,omitempty"`
	Webhooks  []WebhookURL `json:"webhooks"`
}

// ResolveURLs lists where the running services can be reached. Webhook URLs use the
// public tunnel when one is configured.
func ResolveURLs(cfg *config.File, detected webhooks.Services) URLs {
	urls := URLs{
		Localhost: fmt.Sprintf("http://localhost:%d", cfg.Dev().Port),
		Webhooks:  []WebhookURL{},
	}
	if domain := cfg.Ngrok().Domain; domain != "" {
		urls.Ngrok = "https://" + domain
	}

	base := urls.Ngrok
	if base == "" {
		base = urls.Localhost
	}
	for _, svc := range detected {
		provider := svc.Provider
		if provider == "" {
			provider = "custom"
		}
		urls.Webhooks = append(urls.Webhooks, WebhookURL{
			Service:   svc.Name,
			URL:       base + svc.Path,
			Dashboard: webhooks.DashboardURL(provider),
			Provider:  provider,
		})
	}
	return urls
}
