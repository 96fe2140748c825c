package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"news_mirror/internal/apierrors"
	"news_mirror/internal/domain"
	"news_mirror/internal/service"
	"news_mirror/internal/textutil"
)

const (
	listCacheControl = "public, s-maxage=300, stale-while-revalidate=600"
	itemCacheControl = "public, s-maxage=600, stale-while-revalidate=1200"
)

type handlers struct {
	source service.ArticleSource
	logger *slog.Logger
	now    func() time.Time
}

func newHandlers(source service.ArticleSource, logger *slog.Logger) *handlers {
	return &handlers{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// listResponse is the listing body for both profiles. Page is set by the
// mirror profile, NextPage by the live one.
type listResponse struct {
	Status       string        `json:"status"`
	TotalResults int           `json:"totalResults"`
	Results      []articleCard `json:"results"`
	Page         int           `json:"page,omitempty"`
	NextPage     *string       `json:"nextPage,omitempty"`
}

// articleCard is an article shaped for list rendering: the description
// trimmed to the card budget plus a relative publication label.
type articleCard struct {
	domain.Article
	Published string `json:"published,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code,omitempty"`
}

// ListNews handles GET /api/news.
func (h *handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := domain.ListQuery{
		Page:     query.Get("page"),
		Category: query.Get("category"),
		Query:    query.Get("q"),
		Language: query.Get("language"),
		Country:  query.Get("country"),
	}
	if q.Language == "" {
		q.Language = "en"
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.writeError(w, r, "GET /api/news", apierrors.Validation("limit must be a positive integer"))
			return
		}
		q.Limit = n
	}

	list, err := h.source.List(r.Context(), q)
	if err != nil {
		h.writeError(w, r, "GET /api/news", err)
		return
	}

	now := h.now()
	cards := make([]articleCard, len(list.Articles))
	for i, a := range list.Articles {
		if a.Description != nil {
			trimmed := textutil.TruncateWords(*a.Description, textutil.DefaultMaxWords)
			a.Description = &trimmed
		}
		cards[i] = articleCard{
			Article:   a,
			Published: textutil.RelativeTime(a.PubDate, now),
		}
	}

	w.Header().Set("Cache-Control", listCacheControl)
	writeJSON(w, http.StatusOK, listResponse{
		Status:       list.Status,
		TotalResults: list.TotalResults,
		Results:      cards,
		Page:         list.Page,
		NextPage:     list.NextPage,
	})
}

// NewsByID handles GET /api/news/{id}.
func (h *handlers) NewsByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, r, "GET /api/news/{id}", apierrors.Validation("article id is required"))
		return
	}

	article, err := h.source.ByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "GET /api/news/{id}", err)
		return
	}

	w.Header().Set("Cache-Control", itemCacheControl)
	writeJSON(w, http.StatusOK, article)
}

func (h *handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError logs the real error with operation context and answers
// with the generic category message only.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error("request failed",
		"op", op,
		"path", r.URL.Path,
		"error", err,
	)

	status := apierrors.HTTPStatus(err)
	writeJSON(w, status, errorResponse{
		Error:      apierrors.FriendlyMessage(err),
		StatusCode: status,
		Code:       apierrors.Code(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
