package service

import (
	"context"
	"log/slog"
	"strconv"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// MirrorSource serves reads from the Postgres mirror, invoking the sync
// guard first so the first request of the day warms the copy.
type MirrorSource struct {
	syncer   Syncer // nil when the upstream key is missing; reads then serve the store as-is
	articles ArticleStore
	logger   *slog.Logger
}

func NewMirrorSource(syncer Syncer, articles ArticleStore, logger *slog.Logger) *MirrorSource {
	return &MirrorSource{
		syncer:   syncer,
		articles: articles,
		logger:   logger,
	}
}

// List pages the mirror ordered by pub_date descending. A failed sync
// degrades to stored content; the error only surfaces when the store is
// empty and there is nothing to fall back on.
func (m *MirrorSource) List(ctx context.Context, q domain.ListQuery) (*domain.ArticleList, error) {
	page := 1
	if q.Page != "" {
		n, err := strconv.Atoi(q.Page)
		if err != nil || n < 1 {
			return nil, apierrors.Validation("page must be a positive integer")
		}
		page = n
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var syncErr error
	if m.syncer != nil {
		if _, err := m.syncer.SyncIfNeeded(ctx); err != nil {
			syncErr = err
			m.logger.Error("sync failed, serving stored articles", "error", err)
		}
	}

	count, err := m.articles.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 && syncErr != nil {
		return nil, syncErr
	}

	articles, err := m.articles.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &domain.ArticleList{
		Status:       "success",
		TotalResults: count,
		Page:         page,
		Articles:     articles,
	}, nil
}

// ByID looks the article up in the store. Ids only become known through
// a list call, which has already warmed the mirror for the day, so this
// path stays sync-free and bounded by a single query.
func (m *MirrorSource) ByID(ctx context.Context, id string) (*domain.Article, error) {
	article, err := m.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, apierrors.ErrNotFound
	}
	return article, nil
}
