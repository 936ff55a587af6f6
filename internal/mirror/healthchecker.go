package mirror

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker monitors mirror health by probing the data directory.
type HealthChecker struct {
	mirror  *Mirror
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewHealthChecker(m *Mirror, log zerolog.Logger) *HealthChecker {
	hc := &HealthChecker{mirror: m, log: log}
	hc.healthy.Store(0)
	return hc
}

func (hc *HealthChecker) Name() string { return "mirror" }

func (hc *HealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

// Start begins periodic probing: the data directory must exist and the date
// inventory must be readable.
func (hc *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		if _, err := os.Stat(hc.mirror.DataDir()); err != nil {
			hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("mirror health check failed")
			hc.healthy.Store(0)
			return
		}
		if _, err := hc.mirror.AvailableDates(); err != nil {
			hc.log.Error().Stack().Str("checker", hc.Name()).Err(err).Msg("mirror health check failed")
			hc.healthy.Store(0)
			return
		}
		hc.healthy.Store(1)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
