package service

import (
	"context"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
)

// LiveSource proxies reads straight to the upstream API with no store:
// listings and lookups both depend on whatever page the upstream
// currently returns.
type LiveSource struct {
	source     Source
	configured bool
}

func NewLiveSource(source Source, configured bool) *LiveSource {
	return &LiveSource{source: source, configured: configured}
}

func (l *LiveSource) List(ctx context.Context, q domain.ListQuery) (*domain.ArticleList, error) {
	if !l.configured {
		return nil, apierrors.ErrNotConfigured
	}

	result, err := l.source.FetchLatest(ctx, domain.FetchParams{
		Page:     q.Page,
		Category: q.Category,
		Query:    q.Query,
		Language: q.Language,
		Country:  q.Country,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ArticleList{
		Status:       result.Status,
		TotalResults: result.TotalResults,
		NextPage:     result.NextPage,
		Articles:     result.Articles,
	}, nil
}

func (l *LiveSource) ByID(ctx context.Context, id string) (*domain.Article, error) {
	if !l.configured {
		return nil, apierrors.ErrNotConfigured
	}
	return l.source.FetchByID(ctx, id)
}
