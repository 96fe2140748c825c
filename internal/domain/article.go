package domain

import "time"

// Article mirrors one upstream news item. The upstream assigns ArticleID;
// mirrored rows are never updated or deleted.
type Article struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	SourceID    string    `json:"source_id"`
	SourceName  *string   `json:"source_name,omitempty"`
	SourceURL   *string   `json:"source_url,omitempty"`
	Link        string    `json:"link"`
	PubDate     time.Time `json:"pubDate"`
	Language    *string   `json:"language,omitempty"`
	Category    []string  `json:"category,omitempty"`
	Country     []string  `json:"country,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	Creator     []string  `json:"creator,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

// FetchParams are passed through verbatim as upstream query parameters.
type FetchParams struct {
	Page     string
	Category string
	Query    string
	Language string
	Country  string
}

// FetchResult is one upstream page of articles.
type FetchResult struct {
	Status       string
	TotalResults int
	NextPage     *string
	Articles     []Article
}

// ListQuery is the read API query surface. Page stays a raw string: the
// mirror profile parses it as a page number, the live profile forwards
// it as an opaque upstream page token.
type ListQuery struct {
	Page     string
	Limit    int
	Category string
	Query    string
	Language string
	Country  string
}

// ArticleList is the unified listing result for both profiles.
type ArticleList struct {
	Status       string
	TotalResults int
	Page         int
	NextPage     *string
	Articles     []Article
}

// InsertResult reports a batch insert. Attempted counts rows whose
// insert executed without error (conflict no-ops included); Created
// holds the ids of rows that did not exist before.
type InsertResult struct {
	Attempted int
	Created   []string
}
