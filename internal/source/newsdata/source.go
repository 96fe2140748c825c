package newsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
)

const (
	SourceID   = "newsdata"
	SourceName = "newsdata.io"

	defaultLanguage = "en"
)

// Config holds newsdata.io client configuration.
type Config struct {
	BaseURL        string
	Key            string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client calls the newsdata.io latest-news API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	key            string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a newsdata.io client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		key:            cfg.Key,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

// Name returns the human-readable source name.
func (c *Client) Name() string {
	return SourceName
}

// FetchLatest fetches one page of latest news. Params are forwarded
// verbatim as query parameters; language defaults to "en".
func (c *Client) FetchLatest(ctx context.Context, p domain.FetchParams) (*domain.FetchResult, error) {
	reqURL := c.buildURL(p)

	var resp *apiResponse
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err = c.doRequest(ctx, reqURL)
		if err == nil {
			break
		}

		if !retryable(err) || attempt == c.maxAttempts {
			return nil, err
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if err != nil {
		return nil, err
	}

	return &domain.FetchResult{
		Status:       resp.Status,
		TotalResults: resp.TotalResults,
		NextPage:     resp.NextPage,
		Articles:     c.transform(resp.Results),
	}, nil
}

// FetchByID searches the current latest-news batch for id. The upstream
// has no single-article endpoint, so only articles still in the latest
// batch are reachable this way.
func (c *Client) FetchByID(ctx context.Context, id string) (*domain.Article, error) {
	result, err := c.FetchLatest(ctx, domain.FetchParams{})
	if err != nil {
		return nil, err
	}

	for i := range result.Articles {
		if result.Articles[i].ArticleID == id {
			return &result.Articles[i], nil
		}
	}

	return nil, apierrors.ErrNotFound
}

func (c *Client) buildURL(p domain.FetchParams) string {
	q := url.Values{}
	q.Set("apikey", c.key)

	lang := p.Language
	if lang == "" {
		lang = defaultLanguage
	}
	q.Set("language", lang)

	if p.Page != "" {
		q.Set("page", p.Page)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Query != "" {
		q.Set("q", p.Query)
	}
	if p.Country != "" {
		q.Set("country", p.Country)
	}

	return c.baseURL + "/news?" + q.Encode()
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsMirror/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apierrors.UpstreamError{
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Results.Message != "" {
			msg = apiErr.Results.Message
		}
		return nil, &apierrors.UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    msg,
		}
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

// retryable reports whether a failed request is worth another attempt.
// Client-side 4xx answers are final; transport failures and 5xx are not.
func retryable(err error) bool {
	if ue, ok := err.(*apierrors.UpstreamError); ok {
		return ue.StatusCode >= 500
	}
	return false
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) transform(articles []apiArticle) []domain.Article {
	out := make([]domain.Article, 0, len(articles))

	for _, a := range articles {
		pubDate, err := time.ParseInLocation(pubDateLayout, a.PubDate, time.UTC)
		if err != nil {
			c.logger.Warn("failed to parse pub date",
				"article_id", a.ArticleID,
				"pub_date", a.PubDate,
			)
			continue
		}

		out = append(out, domain.Article{
			ArticleID:   a.ArticleID,
			Title:       a.Title,
			Description: a.Description,
			Content:     a.Content,
			ImageURL:    a.ImageURL,
			SourceID:    a.SourceID,
			SourceName:  a.SourceName,
			SourceURL:   a.SourceURL,
			Link:        a.Link,
			PubDate:     pubDate,
			Language:    a.Language,
			Category:    a.Category,
			Country:     a.Country,
			Keywords:    a.Keywords,
			Creator:     a.Creator,
		})
	}

	return out
}
