package newsdata

// pubDateLayout is the timestamp format newsdata.io uses, always UTC.
const pubDateLayout = "2006-01-02 15:04:05"

// apiResponse is a successful latest-news page.
type apiResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Results      []apiArticle `json:"results"`
	NextPage     *string      `json:"nextPage"`
}

type apiArticle struct {
	ArticleID   string   `json:"article_id"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Keywords    []string `json:"keywords"`
	Creator     []string `json:"creator"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	PubDate     string   `json:"pubDate"`
	ImageURL    *string  `json:"image_url"`
	SourceID    string   `json:"source_id"`
	SourceName  *string  `json:"source_name"`
	SourceURL   *string  `json:"source_url"`
	Language    *string  `json:"language"`
	Country     []string `json:"country"`
	Category    []string `json:"category"`
}

// apiError is the body newsdata.io returns with non-2xx statuses.
type apiError struct {
	Status  string `json:"status"`
	Results struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"results"`
}
