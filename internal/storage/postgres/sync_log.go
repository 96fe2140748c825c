package postgres

import (
	"context"
	"database/sql"
	"errors"
	"hash/fnv"

	"github.com/jmoiron/sqlx"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
)

// SyncLogStore is the day-keyed ingestion ledger. The table is the only
// source of truth for "synced today"; nothing is cached in memory, so
// the answer survives restarts and is shared across instances.
type SyncLogStore struct {
	db *sqlx.DB
}

func NewSyncLogStore(db *sqlx.DB) *SyncLogStore {
	return &SyncLogStore{db: db}
}

// IsSyncedToday reports whether a success entry exists for day.
func (s *SyncLogStore) IsSyncedToday(ctx context.Context, day string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM sync_log
			WHERE sync_date = $1 AND status = 'success'
		)`

	var synced bool
	if err := s.db.GetContext(ctx, &synced, query, day); err != nil {
		return false, &apierrors.StoreError{Op: "check sync log", Err: err}
	}
	return synced, nil
}

// Upsert writes the ledger entry for its date, overwriting any earlier
// attempt for the same day.
func (s *SyncLogStore) Upsert(ctx context.Context, entry *domain.SyncLogEntry) error {
	query := `
		INSERT INTO sync_log (sync_date, articles_count, status, error_message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sync_date) DO UPDATE SET
			articles_count = EXCLUDED.articles_count,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			synced_at = NOW()`

	_, err := s.db.ExecContext(ctx, query,
		entry.SyncDate,
		entry.ArticlesCount,
		entry.Status,
		entry.ErrorMessage,
	)
	if err != nil {
		return &apierrors.StoreError{Op: "upsert sync log", Err: err}
	}
	return nil
}

// Get returns the ledger entry for day, or nil when none exists.
func (s *SyncLogStore) Get(ctx context.Context, day string) (*domain.SyncLogEntry, error) {
	query := `
		SELECT sync_date::text AS sync_date, articles_count, status, error_message, synced_at
		FROM sync_log
		WHERE sync_date = $1`

	var entry domain.SyncLogEntry
	err := s.db.GetContext(ctx, &entry, query, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &apierrors.StoreError{Op: "get sync log", Err: err}
	}
	return &entry, nil
}

// AcquireDayLock takes a session-scoped advisory lock keyed by day so
// only one racer runs the fetch-and-insert sequence. It does not block:
// acquired is false when another holder exists. The release func must be
// called once when acquired.
func (s *SyncLogStore) AcquireDayLock(ctx context.Context, day string) (release func(), acquired bool, err error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, false, &apierrors.StoreError{Op: "acquire day lock", Err: err}
	}

	key := dayLockKey(day)

	var ok bool
	if err := conn.GetContext(ctx, &ok, "SELECT pg_try_advisory_lock($1)", key); err != nil {
		_ = conn.Close()
		return nil, false, &apierrors.StoreError{Op: "acquire day lock", Err: err}
	}
	if !ok {
		_ = conn.Close()
		return nil, false, nil
	}

	// The lock lives on this pinned connection; unlock on it before
	// returning the connection to the pool.
	release = func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key)
		_ = conn.Close()
	}
	return release, true, nil
}

func dayLockKey(day string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("sync_log:" + day))
	return int64(h.Sum64())
}
