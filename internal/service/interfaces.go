package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"news_mirror/internal/domain"
)

// Source is the upstream news API.
type Source interface {
	Name() string
	FetchLatest(ctx context.Context, p domain.FetchParams) (*domain.FetchResult, error)
	FetchByID(ctx context.Context, id string) (*domain.Article, error)
}

// ArticleStore is the Postgres article mirror.
type ArticleStore interface {
	InsertBatch(ctx context.Context, articles []domain.Article) (*domain.InsertResult, error)
	List(ctx context.Context, limit, offset int) ([]domain.Article, error)
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	Count(ctx context.Context) (int, error)
}

// SyncLogStore is the day-keyed ingestion ledger.
type SyncLogStore interface {
	IsSyncedToday(ctx context.Context, day string) (bool, error)
	Upsert(ctx context.Context, entry *domain.SyncLogEntry) error
	AcquireDayLock(ctx context.Context, day string) (release func(), acquired bool, err error)
}

// Publisher hands newly mirrored articles to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, article *domain.Article) error
	Close() error
}

// Syncer triggers a sync when the ledger says one is due.
type Syncer interface {
	SyncIfNeeded(ctx context.Context) (performed bool, err error)
}

// ArticleSource is the read API capability. MirrorSource serves the
// Postgres copy, LiveSource proxies the upstream; the HTTP layer does
// not know which one it holds.
type ArticleSource interface {
	List(ctx context.Context, q domain.ListQuery) (*domain.ArticleList, error)
	ByID(ctx context.Context, id string) (*domain.Article, error)
}
