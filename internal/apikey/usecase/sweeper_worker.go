package usecase

import (
	"context"
	"log/slog"
	"time"
)

// SweeperWorker runs both sweeper passes on a fixed interval. Passes never overlap.
type SweeperWorker struct {
	interval time.Duration
	sweeper  SweeperUseCase
	logger   *slog.Logger
}

// NewSweeperWorker creates a SweeperWorker.
func NewSweeperWorker(interval time.Duration, sweeper SweeperUseCase, logger *slog.Logger) *SweeperWorker {
	return &SweeperWorker{
		interval: interval,
		sweeper:  sweeper,
		logger:   logger,
	}
}

// Start runs a pass immediately and then on every tick until ctx is cancelled.
func (w *SweeperWorker) Start(ctx context.Context) error {
	w.logger.Info("starting api key sweeper", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.RunOnce(ctx)

		select {
		case <-ctx.Done():
			w.logger.Info("stopping api key sweeper")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce revokes rotated keys past their grace period, then deactivates expired keys.
func (w *SweeperWorker) RunOnce(ctx context.Context) {
	if _, err := w.sweeper.SweepGracePeriod(ctx); err != nil {
		w.logger.Error("failed to sweep rotated api keys", slog.Any("error", err))
	}
	if _, err := w.sweeper.SweepExpired(ctx); err != nil {
		w.logger.Error("failed to sweep expired api keys", slog.Any("error", err))
	}
}
