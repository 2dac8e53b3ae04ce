package webhooks

import (
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultCheckTimeout = 30 * time.Second

// CLIStatus is the outcome of probing an external CLI.
type CLIStatus struct {
	Installed bool   `json:"installed"`
	Message   string `json:"message"`
}

// RunFunc runs name with args and returns its stdout.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- only fixed CLI names are run.
	return exec.CommandContext(ctx, name, args...).Output()
}

// Checker probes the ngrok and Stripe CLIs.
type Checker struct {
	Run     RunFunc
	Timeout time.Duration
}

func NewChecker() *Checker {
	return &Checker{Run: execRun, Timeout: DefaultCheckTimeout}
}

func (c *Checker) run(ctx context.Context, name string, args ...string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	run := c.Run
	if run == nil {
		run = execRun
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := run(ctx, name, args...)
	return strings.TrimSpace(string(out)), err
}

func notInstalled(err error) bool {
	return stderrors.Is(err, exec.ErrNotFound)
}

func (c *Checker) Ngrok(ctx context.Context) CLIStatus {
	version, err := c.run(ctx, "ngrok", "version")
	if err != nil {
		if notInstalled(err) {
			return CLIStatus{Message: "ngrok not installed. Install: brew install ngrok/ngrok/ngrok"}
		}
		return CLIStatus{Message: "ngrok check failed"}
	}
	return CLIStatus{Installed: true, Message: "ngrok " + version}
}

// Stripe also requires the CLI to be logged in.
func (c *Checker) Stripe(ctx context.Context) CLIStatus {
	version, err := c.run(ctx, "stripe", "version")
	if err != nil {
		if notInstalled(err) {
			return CLIStatus{Message: "Stripe CLI not installed. Install: brew install stripe/stripe-cli/stripe"}
		}
		return CLIStatus{Message: "Stripe CLI check failed"}
	}
	cfg, err := c.run(ctx, "stripe", "config", "--list")
	if err != nil || !strings.Contains(cfg, "test_mode_api_key") {
		return CLIStatus{Message: "Stripe CLI " + version + " (not logged in - run: stripe login)"}
	}
	return CLIStatus{Installed: true, Message: "Stripe CLI " + version}
}

// Status probes both CLIs concurrently.
func (c *Checker) Status(ctx context.Context) (ngrok CLIStatus, stripe CLIStatus) {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		ngrok = c.Ngrok(egCtx)
		return nil
	})
	eg.Go(func() error {
		stripe = c.Stripe(egCtx)
		return nil
	})
	_ = eg.Wait()
	return ngrok, stripe
}
