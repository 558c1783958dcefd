package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/optomall/optomall/internal/shop"
)

// Mirrors idle longer than this are dropped; the guest cookie will have
// expired long before.
const sessionMirrorRetention = 90 * 24 * time.Hour

// FlushSessionsJob mirrors dirty redis cart sessions into the Postgres
// shop_sessions table. Redis stays authoritative; a failed session goes
// back on the next drain because the store re-marks it on mutation.
type FlushSessionsJob struct {
	store  *shop.Store
	repo   *shop.Repository
	logger *slog.Logger
}

// NewFlushSessionsJob builds FlushSessionsJob instance.
func NewFlushSessionsJob(store *shop.Store, repo *shop.Repository, logger *slog.Logger) *FlushSessionsJob {
	return &FlushSessionsJob{store: store, repo: repo, logger: logger}
}

// Handle processes TaskFlushSessions tasks.
func (j *FlushSessionsJob) Handle(ctx context.Context, t *asynq.Task) error {
	flushed := 0
	for {
		keys, err := j.store.DirtySessions(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			break
		}
		for _, key := range keys {
			snap, err := j.store.Snapshot(ctx, key)
			if err != nil {
				j.logger.Warn("snapshot session", slog.String("session", key), slog.Any("error", err))
				continue
			}
			if err := j.repo.UpsertSnapshot(ctx, snap); err != nil {
				j.logger.Warn("mirror session", slog.String("session", key), slog.Any("error", err))
				continue
			}
			flushed++
		}
	}
	if flushed > 0 {
		j.logger.Info("sessions mirrored", slog.Int("count", flushed))
	}

	dropped, err := j.repo.DeleteStale(ctx, time.Now().UTC().Add(-sessionMirrorRetention))
	if err != nil {
		return err
	}
	if dropped > 0 {
		j.logger.Info("stale session mirrors dropped", slog.Int64("count", dropped))
	}
	return nil
}
