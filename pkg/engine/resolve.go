package engine

import (
	"context"
	"fmt"

	"github.com/go-go-golems/devserv/pkg/config"
	"github.com/go-go-golems/devserv/pkg/webhooks"
	"github.com/rs/zerolog/log"
)

const (
	DescDevServer = "Development server"
	DescNgrok     = "ngrok tunnel"
	DescStripe    = "Stripe CLI webhook forwarding"
)

// CLIChecker reports whether the tunnel and webhook CLIs are usable.
type CLIChecker interface {
	Ngrok(ctx context.Context) webhooks.CLIStatus
	Stripe(ctx context.Context) webhooks.CLIStatus
}

// Resolve builds the launch plan from the devkit config: the dev server always, then an
// ngrok tunnel when a domain is configured, then a Stripe listener when a Stripe webhook
// receiver was detected. Tunnel and listener are only planned if their CLI is usable and
// dev.include_webhooks is on.
func Resolve(ctx context.Context, cfg *config.File, detected webhooks.Services, checker CLIChecker) LaunchPlan {
	dev := cfg.Dev()
	plan := LaunchPlan{
		Port: dev.Port,
		Services: []PlannedService{
			{Terminal: 1, Command: dev.Command, Description: DescDevServer},
		},
	}
	if !dev.IncludeWebhooks {
		return plan
	}

	ngrok := cfg.Ngrok()
	if ngrok.Domain != "" {
		if st := checker.Ngrok(ctx); st.Installed {
			plan.Services = append(plan.Services, PlannedService{
				Terminal:    2,
				Command:     fmt.Sprintf("ngrok http %d --domain %s", ngrok.Port, ngrok.Domain),
				Description: DescNgrok,
			})
		} else {
			log.Warn().Str("reason", st.Message).Msg("skipping ngrok tunnel")
		}
	}

	stripe := detected.ByProvider("stripe")
	if len(stripe) > 0 {
		if st := checker.Stripe(ctx); st.Installed {
			forward := fmt.Sprintf("http://localhost:%d%s", ngrok.Port, stripe[0].Path)
			plan.Services = append(plan.Services, PlannedService{
				Terminal:    3,
				Command:     "stripe listen --forward-to " + forward,
				Description: DescStripe,
			})
		} else {
			log.Warn().Str("reason", st.Message).Msg("skipping stripe listener")
		}
	}

	return plan
}
