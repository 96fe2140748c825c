package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
)

// ArticleStore mirrors upstream articles. Rows are insert-only: a
// conflicting article_id is a silent no-op, never an overwrite.
type ArticleStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewArticleStore(db *sqlx.DB, logger *slog.Logger) *ArticleStore {
	return &ArticleStore{db: db, logger: logger}
}

type articleRow struct {
	ArticleID   string         `db:"article_id"`
	Title       string         `db:"title"`
	Description *string        `db:"description"`
	Content     *string        `db:"content"`
	ImageURL    *string        `db:"image_url"`
	SourceID    string         `db:"source_id"`
	SourceName  *string        `db:"source_name"`
	SourceURL   *string        `db:"source_url"`
	Link        string         `db:"link"`
	PubDate     time.Time      `db:"pub_date"`
	Language    *string        `db:"language"`
	Category    pq.StringArray `db:"category"`
	Country     pq.StringArray `db:"country"`
	Keywords    pq.StringArray `db:"keywords"`
	Creator     pq.StringArray `db:"creator"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r articleRow) toDomain() domain.Article {
	return domain.Article{
		ArticleID:   r.ArticleID,
		Title:       r.Title,
		Description: r.Description,
		Content:     r.Content,
		ImageURL:    r.ImageURL,
		SourceID:    r.SourceID,
		SourceName:  r.SourceName,
		SourceURL:   r.SourceURL,
		Link:        r.Link,
		PubDate:     r.PubDate,
		Language:    r.Language,
		Category:    r.Category,
		Country:     r.Country,
		Keywords:    r.Keywords,
		Creator:     r.Creator,
		CreatedAt:   r.CreatedAt,
	}
}

const articleColumns = `
	article_id, title, description, content, image_url,
	source_id, source_name, source_url, link, pub_date,
	language, category, country, keywords, creator, created_at`

// InsertBatch inserts each article in its own implicit transaction.
// A row that fails is logged and skipped so the rest of the batch still
// lands; an article_id conflict counts as an executed attempt. Created
// lists the ids that did not exist before.
func (s *ArticleStore) InsertBatch(ctx context.Context, articles []domain.Article) (*domain.InsertResult, error) {
	query := `
		INSERT INTO articles (
			article_id, title, description, content, image_url,
			source_id, source_name, source_url, link, pub_date,
			language, category, country, keywords, creator
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		ON CONFLICT (article_id) DO NOTHING`

	result := &domain.InsertResult{}

	for i := range articles {
		if err := ctx.Err(); err != nil {
			return result, &apierrors.StoreError{Op: "insert articles", Err: err}
		}

		a := &articles[i]
		res, err := s.db.ExecContext(ctx, query,
			a.ArticleID,
			a.Title,
			a.Description,
			a.Content,
			a.ImageURL,
			a.SourceID,
			a.SourceName,
			a.SourceURL,
			a.Link,
			a.PubDate,
			a.Language,
			pq.Array(a.Category),
			pq.Array(a.Country),
			pq.Array(a.Keywords),
			pq.Array(a.Creator),
		)
		if err != nil {
			s.logger.Warn("failed to insert article",
				"article_id", a.ArticleID,
				"error", err,
			)
			continue
		}

		result.Attempted++
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			result.Created = append(result.Created, a.ArticleID)
		}
	}

	return result, nil
}

// List returns articles ordered by pub_date descending with article_id
// as the tie-break, so fixed datasets page deterministically.
func (s *ArticleStore) List(ctx context.Context, limit, offset int) ([]domain.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		ORDER BY pub_date DESC, article_id
		LIMIT $1 OFFSET $2`

	var rows []articleRow
	if err := s.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, &apierrors.StoreError{Op: "list articles", Err: err}
	}

	articles := make([]domain.Article, len(rows))
	for i, r := range rows {
		articles[i] = r.toDomain()
	}
	return articles, nil
}

// GetByID returns the article or nil when absent.
func (s *ArticleStore) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE article_id = $1`

	var row articleRow
	err := s.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &apierrors.StoreError{Op: "get article", Err: err}
	}

	article := row.toDomain()
	return &article, nil
}

func (s *ArticleStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM articles"); err != nil {
		return 0, &apierrors.StoreError{Op: "count articles", Err: err}
	}
	return count, nil
}
