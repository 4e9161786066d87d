package exchange

import (
	"context"
	"time"

	"github.com/iwvelando/uva-calculator/pkg/constants"
	"go.uber.org/zap"
)

// FallbackSource names quotes that come from the constant fallback.
const FallbackSource = "fallback"

// ProviderOptions configures a Provider. Zero values select defaults.
type ProviderOptions struct {
	Cache    Cache
	Sources  []Source
	Fallback float64
	TTL      time.Duration
	Now      func() time.Time
}

// Provider resolves the official rate through the cache, the ordered sources
// and finally a constant fallback. It never fails.
type Provider struct {
	logger   *zap.Logger
	cache    Cache
	sources  []Source
	fallback float64
	ttl      time.Duration
	now      func() time.Time
}

// NewProvider creates a Provider.
func NewProvider(logger *zap.Logger, opts ProviderOptions) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{
		logger:   logger,
		cache:    opts.Cache,
		sources:  opts.Sources,
		fallback: opts.Fallback,
		ttl:      opts.TTL,
		now:      opts.Now,
	}
	if p.fallback <= 0 {
		p.fallback = constants.DefaultOfficialRate
	}
	if p.ttl <= 0 {
		p.ttl = constants.DefaultRateCacheTTL
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// OfficialRate returns a cached quote younger than the TTL, otherwise the
// first usable quote from the sources, otherwise the fallback constant.
func (p *Provider) OfficialRate(ctx context.Context) Quote {
	if q, ok := p.cached(ctx); ok {
		return q
	}
	if q, ok := p.Refresh(ctx); ok {
		return q
	}

	p.logger.Warn("all rate sources failed, using fallback rate",
		zap.String("op", "exchange.OfficialRate"),
		zap.Float64("rate", p.fallback),
	)
	return Quote{Value: p.fallback, Source: FallbackSource, FetchedAt: p.now()}
}

// Refresh skips the cache and asks each source in order. The first usable
// quote is written back to the cache. It reports false when every source failed.
func (p *Provider) Refresh(ctx context.Context) (Quote, bool) {
	for _, source := range p.sources {
		q, err := source.Fetch(ctx)
		if err != nil {
			p.logger.Warn("rate source failed",
				zap.String("op", "exchange.Refresh"),
				zap.String("source", source.Name()),
				zap.Error(err),
			)
			continue
		}
		if q.Value <= 0 {
			p.logger.Warn("rate source returned a non-positive value",
				zap.String("op", "exchange.Refresh"),
				zap.String("source", source.Name()),
				zap.Float64("rate", q.Value),
			)
			continue
		}
		if q.FetchedAt.IsZero() {
			q.FetchedAt = p.now()
		}

		p.store(ctx, q)
		p.logger.Info("fetched official rate",
			zap.String("op", "exchange.Refresh"),
			zap.String("source", q.Source),
			zap.String("date", q.Date),
			zap.Float64("rate", q.Value),
		)
		return q, true
	}
	return Quote{}, false
}

func (p *Provider) cached(ctx context.Context) (Quote, bool) {
	if p.cache == nil {
		return Quote{}, false
	}

	entry, ok, err := p.cache.Load(ctx)
	if err != nil {
		p.logger.Warn("failed to read rate cache",
			zap.String("op", "exchange.OfficialRate"),
			zap.Error(err),
		)
		return Quote{}, false
	}
	if !ok {
		return Quote{}, false
	}
	if !entry.Valid(p.now(), p.ttl) {
		p.logger.Debug("discarding expired or invalid cached rate",
			zap.String("op", "exchange.OfficialRate"),
			zap.Float64("rate", entry.Value),
			zap.Time("timestamp", entry.Timestamp),
		)
		return Quote{}, false
	}

	p.logger.Debug("using cached official rate",
		zap.String("op", "exchange.OfficialRate"),
		zap.String("source", entry.Source),
		zap.Float64("rate", entry.Value),
	)
	return entry.Quote(), true
}

func (p *Provider) store(ctx context.Context, q Quote) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Store(ctx, entryFromQuote(q)); err != nil {
		p.logger.Warn("failed to write rate cache",
			zap.String("op", "exchange.Refresh"),
			zap.Error(err),
		)
	}
}
