package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	apikeyUseCase "github.com/allisson/apikeys/internal/apikey/usecase"
)

// RunSweepExpiredKeys deactivates every key past its expiration date, paging through
// them in batches. Keys that fail are logged and retried on the next run. Useful when
// the in-process sweeper is disabled and a scheduler drives it instead.
func RunSweepExpiredKeys(
	ctx context.Context,
	sweeperUseCase apikeyUseCase.SweeperUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("sweeping expired api keys")

	count, err := sweeperUseCase.SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep expired api keys: %w", err)
	}

	outputSweepResult(writer, format, "deactivated", "expired", count)

	logger.Info("expired api key sweep completed", slog.Int("count", count))
	return nil
}

// RunSweepRotatedKeys revokes every rotated key whose grace period has elapsed.
func RunSweepRotatedKeys(
	ctx context.Context,
	sweeperUseCase apikeyUseCase.SweeperUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("sweeping rotated api keys")

	count, err := sweeperUseCase.SweepGracePeriod(ctx)
	if err != nil {
		return fmt.Errorf("failed to sweep rotated api keys: %w", err)
	}

	outputSweepResult(writer, format, "revoked", "rotated", count)

	logger.Info("rotated api key sweep completed", slog.Int("count", count))
	return nil
}

func outputSweepResult(writer io.Writer, format, action, kind string, count int) {
	if format == "json" {
		writeJSON(writer, map[string]any{
			"action": action,
			"kind":   kind,
			"count":  count,
		})
		return
	}

	_, _ = fmt.Fprintf(writer, "Successfully %s %d %s api key(s)\n", action, count, kind)
}
