package workers

import (
	"context"
	"log/slog"
	"time"

	"shop-lab/contract"
	"shop-lab/observability"
)

// Reporter periodically logs process stats plus the live connection
// count. Purely observational; it never touches domain state.
type Reporter struct {
	log      *slog.Logger
	sampler  *observability.StatsSampler
	registry contract.IRegistry
	interval time.Duration
}

func NewReporter(log *slog.Logger, sampler *observability.StatsSampler,
	registry contract.IRegistry, interval time.Duration) *Reporter {
	return &Reporter{log: log, sampler: sampler, registry: registry, interval: interval}
}

func (r *Reporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Debug("context done, stopping reporter")
			return nil
		case <-ticker.C:
			stats := r.sampler.Sample(len(r.registry.ConnectedClients()))
			r.log.Info("process stats",
				"cpu_percent", stats.CPUPercent,
				"rss_mb", stats.RSSMb,
				"alloc_mb", stats.AllocMemMb,
				"num_gc", stats.NumGC,
				"goroutines", stats.Goroutines,
				"connections", stats.Connections)
		}
	}
}
