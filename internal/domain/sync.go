package domain

import "time"

const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncLogEntry is the day-keyed ledger row recording whether ingestion
// ran and how it went. At most one entry exists per calendar date; a
// later attempt for the same date overwrites it.
type SyncLogEntry struct {
	SyncDate      string    `db:"sync_date"` // YYYY-MM-DD
	ArticlesCount int       `db:"articles_count"`
	Status        string    `db:"status"`
	ErrorMessage  *string   `db:"error_message"`
	SyncedAt      time.Time `db:"synced_at"`
}

// SyncDay returns the ledger key for the given instant.
func SyncDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
