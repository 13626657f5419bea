package threads

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPollInterval is how often the recent-replies query re-fetches to
// surface new inbound messages without a manual refresh.
const DefaultPollInterval = 60 * time.Second

// Poller periodically re-runs the recent-replies query and hands each
// successful result to a handler. All other thread queries remain
// fetch-on-demand.
type Poller struct {
	client   *Client
	opts     RecentOptions
	handler  func([]Thread)
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a Poller. An interval <= 0 selects DefaultPollInterval.
func NewPoller(client *Client, opts RecentOptions, handler func([]Thread), interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   client,
		opts:     opts,
		handler:  handler,
		interval: interval,
		logger:   slog.Default(),
	}
}

// Run polls until ctx is cancelled. The first fetch happens immediately;
// fetch errors are logged and the loop keeps going.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	list, err := p.client.RecentReplies(ctx, p.opts)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("recent replies poll failed", "error", err)
		return
	}
	if p.handler != nil {
		p.handler(list)
	}
}
