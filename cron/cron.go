package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// sweepTimeout bounds a single sweep so a slow database cannot stack runs.
const sweepTimeout = 30 * time.Second

// Sweeper clears password reset tokens that have expired.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// StartResetTokenSweep schedules sweeper on the given cron spec and starts the
// scheduler. Callers stop it with Stop on shutdown.
func StartResetTokenSweep(spec string, sweeper Sweeper) (*cron.Cron, error) {
	log.Info().Str("schedule", spec).Msg("starting reset token sweep")
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(spec, func() { sweepExpiredTokens(sweeper) }); err != nil {
		return nil, fmt.Errorf("add reset token sweep %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

// sweepExpiredTokens runs one sweep and logs the outcome
func sweepExpiredTokens(sweeper Sweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := sweeper.SweepExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reset token sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int64("cleared", n).Msg("cleared expired reset tokens")
	}
}
