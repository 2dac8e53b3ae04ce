package supervise

import (
	"context"
	"syscall"
	"time"

	"github.com/go-go-golems/devserv/pkg/ledger"
	"github.com/go-go-golems/devserv/pkg/state"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultKillTimeout = 2 * time.Second

type Outcome string

const (
	// OutcomeAlreadyStopped: the recorded process was gone before stop ran.
	OutcomeAlreadyStopped Outcome = "already stopped"
	// OutcomeStopped: SIGTERM was sent. With a grace period, exit was also confirmed.
	OutcomeStopped Outcome = "stopped"
	// OutcomeKilled: the process outlived the grace period and was sent SIGKILL.
	OutcomeKilled Outcome = "killed"
	// OutcomeTimeout: the process was still alive after SIGKILL.
	OutcomeTimeout Outcome = "timeout"
)

type ReaperOptions struct {
	Store ledger.Store
	// GracePeriod > 0 waits for each process to exit after SIGTERM and escalates to
	// SIGKILL. Zero sends SIGTERM and moves on without waiting.
	GracePeriod time.Duration
	KillTimeout time.Duration
}

// Reaper terminates every service recorded in the ledger and clears it.
type Reaper struct {
	opts ReaperOptions
}

func NewReaper(opts ReaperOptions) *Reaper {
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = DefaultKillTimeout
	}
	return &Reaper{opts: opts}
}

type StopResult struct {
	Name    string  `json:"name"`
	PID     int     `json:"pid"`
	Outcome Outcome `json:"outcome"`
}

type StopReport struct {
	Services []StopResult `json:"services"`
	// Stopped counts every service that was alive when stop ran, whether or not the
	// signals had any effect.
	Stopped  int  `json:"stopped"`
	NoLedger bool `json:"no_ledger"`
}

// Stop signals every live recorded service and removes the ledger. A missing ledger is a
// successful no-op. The only error returned is a ledger that exists but cannot be read.
func (r *Reaper) Stop(ctx context.Context) (*StopReport, error) {
	if r.opts.Store == nil {
		return nil, errors.New("missing ledger store")
	}
	report := &StopReport{Services: []StopResult{}}

	reg, err := r.opts.Store.Load()
	if err != nil {
		if errors.Is(err, ledger.ErrNoLedger) {
			report.NoLedger = true
			return report, nil
		}
		return nil, err
	}

	for _, rec := range reg {
		res := StopResult{Name: rec.Name, PID: rec.PID}
		if !state.ProcessAlive(rec.PID) {
			res.Outcome = OutcomeAlreadyStopped
			log.Debug().Str("service", rec.Name).Int("pid", rec.PID).Msg("service already stopped")
			report.Services = append(report.Services, res)
			continue
		}

		res.Outcome = r.terminate(ctx, rec)
		report.Stopped++
		log.Info().Str("service", rec.Name).Int("pid", rec.PID).Str("outcome", string(res.Outcome)).Msg("service stopped")
		report.Services = append(report.Services, res)
	}

	if err := r.opts.Store.Clear(); err != nil {
		log.Warn().Err(err).Msg("could not remove ledger")
	}
	return report, nil
}

func (r *Reaper) terminate(ctx context.Context, rec ledger.PidRecord) Outcome {
	signalService(rec.PID, syscall.SIGTERM)
	if r.opts.GracePeriod <= 0 {
		return OutcomeStopped
	}
	if waitExit(ctx, rec.PID, r.opts.GracePeriod) {
		return OutcomeStopped
	}

	log.Warn().Str("service", rec.Name).Int("pid", rec.PID).Str("signal", "SIGKILL").Msg("service ignored SIGTERM, killing")
	signalService(rec.PID, syscall.SIGKILL)
	if waitExit(ctx, rec.PID, r.opts.KillTimeout) {
		return OutcomeKilled
	}
	return OutcomeTimeout
}
