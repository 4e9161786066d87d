package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher periodically re-fetches the official rate and hands successful
// quotes to a callback. Failed refreshes keep the previous rate.
type Refresher struct {
	logger   *zap.Logger
	provider *Provider
	cron     *cron.Cron
	timeout  time.Duration
	onUpdate func(Quote)
}

// NewRefresher schedules refreshes with a cron spec such as "@every 1h".
func NewRefresher(logger *zap.Logger, provider *Provider, spec string, onUpdate func(Quote)) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spec == "" {
		spec = constants.DefaultRefreshSchedule
	}

	r := &Refresher{
		logger:   logger,
		provider: provider,
		cron:     cron.New(),
		timeout:  constants.DefaultFetchTimeout * 3,
		onUpdate: onUpdate,
	}
	if _, err := r.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		r.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start begins running the schedule in the background.
func (r *Refresher) Start() {
	r.logger.Info("starting rate refresher",
		zap.String("op", "exchange.Refresher.Start"),
	)
	r.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// running refresh completes.
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}

// RunOnce performs a single refresh. It reports whether a new quote was published.
func (r *Refresher) RunOnce(ctx context.Context) bool {
	q, ok := r.provider.Refresh(ctx)
	if !ok {
		r.logger.Warn("scheduled rate refresh failed, keeping previous rate",
			zap.String("op", "exchange.Refresher.RunOnce"),
		)
		return false
	}
	if r.onUpdate != nil {
		r.onUpdate(q)
	}
	return true
}
