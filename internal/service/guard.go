package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"news_mirror/internal/config"
	"news_mirror/internal/domain"
	"news_mirror/internal/metrics"
)

// SyncGuard performs at most one successful ingestion per calendar day.
// The ledger is checked fresh on every call; a per-day Postgres advisory
// lock serializes racers that all observe an unsynced day, and losers
// skip instead of waiting.
type SyncGuard struct {
	source    Source
	articles  ArticleStore
	syncLog   SyncLogStore
	publisher Publisher
	logger    *slog.Logger
	language  string
}

func NewSyncGuard(
	source Source,
	articles ArticleStore,
	syncLog SyncLogStore,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncGuard {
	return &SyncGuard{
		source:    source,
		articles:  articles,
		syncLog:   syncLog,
		publisher: publisher,
		logger:    logger.With("component", "sync_guard"),
		language:  cfg.Language,
	}
}

// SyncIfNeeded refreshes the mirror unless today's ledger entry already
// reads success. It returns whether this call performed the sync. On
// failure the ledger records the attempt before the error is returned.
func (g *SyncGuard) SyncIfNeeded(ctx context.Context) (bool, error) {
	day := domain.SyncDay(time.Now())

	synced, err := g.syncLog.IsSyncedToday(ctx, day)
	if err != nil {
		return false, fmt.Errorf("check sync log: %w", err)
	}
	if synced {
		return false, nil
	}

	release, acquired, err := g.syncLog.AcquireDayLock(ctx, day)
	if err != nil {
		return false, fmt.Errorf("acquire day lock: %w", err)
	}
	if !acquired {
		g.logger.Debug("sync already running elsewhere, skipping", "day", day)
		metrics.SyncRuns.WithLabelValues("skipped").Inc()
		return false, nil
	}
	defer release()

	// Another racer may have finished between the check and the lock.
	synced, err = g.syncLog.IsSyncedToday(ctx, day)
	if err != nil {
		return false, fmt.Errorf("recheck sync log: %w", err)
	}
	if synced {
		return false, nil
	}

	if err := g.sync(ctx, day); err != nil {
		return false, err
	}
	return true, nil
}

func (g *SyncGuard) sync(ctx context.Context, day string) error {
	g.logger.Info("syncing articles", "day", day, "source_name", g.source.Name())

	result, err := g.source.FetchLatest(ctx, domain.FetchParams{Language: g.language})
	if err != nil {
		g.recordFailure(ctx, day, err)
		return fmt.Errorf("fetch latest news: %w", err)
	}

	inserted, err := g.articles.InsertBatch(ctx, result.Articles)
	if err != nil {
		g.recordFailure(ctx, day, err)
		return fmt.Errorf("insert articles: %w", err)
	}

	g.publish(ctx, result.Articles, inserted.Created)

	err = g.syncLog.Upsert(ctx, &domain.SyncLogEntry{
		SyncDate:      day,
		ArticlesCount: inserted.Attempted,
		Status:        domain.SyncStatusSuccess,
	})
	if err != nil {
		return fmt.Errorf("record sync success: %w", err)
	}

	metrics.SyncRuns.WithLabelValues("success").Inc()
	metrics.ArticlesInserted.Add(float64(inserted.Attempted))

	g.logger.Info("sync completed",
		"day", day,
		"fetched", len(result.Articles),
		"attempted", inserted.Attempted,
		"created", len(inserted.Created),
	)
	return nil
}

func (g *SyncGuard) recordFailure(ctx context.Context, day string, cause error) {
	metrics.SyncRuns.WithLabelValues("failed").Inc()

	msg := cause.Error()
	err := g.syncLog.Upsert(ctx, &domain.SyncLogEntry{
		SyncDate:     day,
		Status:       domain.SyncStatusFailed,
		ErrorMessage: &msg,
	})
	if err != nil {
		g.logger.Error("failed to record sync failure", "day", day, "error", err)
	}
}

// publish hands newly created articles to the broker, best effort: a
// publish failure never fails the sync.
func (g *SyncGuard) publish(ctx context.Context, articles []domain.Article, created []string) {
	if g.publisher == nil || len(created) == 0 {
		return
	}

	isNew := make(map[string]bool, len(created))
	for _, id := range created {
		isNew[id] = true
	}

	for i := range articles {
		if !isNew[articles[i].ArticleID] {
			continue
		}
		if err := g.publisher.Publish(ctx, &articles[i]); err != nil {
			g.logger.Warn("failed to publish article",
				"article_id", articles[i].ArticleID,
				"error", err,
			)
		}
	}
}
