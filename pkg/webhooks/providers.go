// Package webhooks finds the webhook receivers of a project and checks the CLIs
// (ngrok, Stripe) used to expose them during local development.
package webhooks

// Provider describes a webhook-sending service and how to recognise it in a project.
type Provider struct {
	Name        string
	EnvPatterns []string
	Deps        []string
	DefaultPath string
	Dashboard   string
}

var Providers = []Provider{
	{
		Name:        "stripe",
		EnvPatterns: []string{"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET"},
		Deps:        []string{"stripe", "@stripe/stripe-js"},
		DefaultPath: "/api/webhooks/stripe",
		Dashboard:   "https://dashboard.stripe.com/webhooks",
	},
	{
		Name:        "livekit",
		EnvPatterns: []string{"LIVEKIT_API_KEY", "LIVEKIT_API_SECRET"},
		Deps:        []string{"livekit-server-sdk", "@livekit/components-react"},
		DefaultPath: "/api/webhooks/livekit",
		Dashboard:   "https://cloud.livekit.io",
	},
	{
		Name:        "clerk",
		EnvPatterns: []string{"CLERK_SECRET_KEY", "CLERK_WEBHOOK_SECRET"},
		Deps:        []string{"@clerk/nextjs", "@clerk/clerk-sdk-node"},
		DefaultPath: "/api/webhooks/clerk",
		Dashboard:   "https://dashboard.clerk.com",
	},
	{
		Name:        "resend",
		EnvPatterns: []string{"RESEND_API_KEY", "RESEND_WEBHOOK_SECRET"},
		Deps:        []string{"resend"},
		DefaultPath: "/api/webhooks/resend",
		Dashboard:   "https://resend.com/webhooks",
	},
}

func LookupProvider(name string) (Provider, bool) {
	for _, p := range Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// DashboardURL is empty for custom providers.
func DashboardURL(provider string) string {
	p, _ := LookupProvider(provider)
	return p.Dashboard
}

var commonEvents = map[string][]string{
	"stripe": {
		"checkout.session.completed",
		"customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted",
		"invoice.paid",
		"invoice.payment_failed",
	},
	"clerk": {
		"user.created",
		"user.updated",
		"user.deleted",
		"session.created",
		"session.ended",
	},
	"livekit": {
		"room_started",
		"room_finished",
		"participant_joined",
		"participant_left",
		"track_published",
	},
	"resend": {
		"email.sent",
		"email.delivered",
		"email.bounced",
		"email.complained",
	},
}

// Events lists the webhook events most projects subscribe to for provider.
func Events(provider string) []string {
	return append([]string{}, commonEvents[provider]...)
}
