// Package news defines the core domain types and store interfaces for the
// newsroom service. Handlers, the ingestion pipeline, and the Postgres layer
// all depend on this package rather than on each other.
package news

import "time"

// Roles recognized by the service. Admin routes and the ingestion
// precondition check both key off RoleAdmin.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account that can sign in to the CMS.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Category groups articles. Name is unique across all categories.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ArticleCount int64     `json:"articleCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Article is a single news story. SourceURL is the canonical URL of the
// original publication and is globally unique.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Content      string    `json:"content"`
	Author       *string   `json:"author"`
	ImageURL     *string   `json:"imageUrl"`
	SourceURL    string    `json:"sourceUrl"`
	PublishedAt  time.Time `json:"publishedAt"`
	CategoryID   string    `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Article sort columns accepted by ArticleQuery.
const (
	SortByTitle       = "title"
	SortByAuthor      = "author"
	SortByPublishedAt = "publishedAt"
)

// ArticleQuery captures the listing parameters for articles.
type ArticleQuery struct {
	Page       int
	Limit      int
	CategoryID string
	Search     string
	SortBy     string
	SortOrder  string
}

// ArticlePage is one page of an article listing plus paging metadata.
type ArticlePage struct {
	Data        []Article `json:"data"`
	TotalItems  int64     `json:"totalItems"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

// CategoryQuery captures the listing parameters for categories.
type CategoryQuery struct {
	Page   int
	Limit  int
	Search string
}

// CategoryPage is one page of a category listing plus paging metadata.
type CategoryPage struct {
	Data        []Category `json:"data"`
	TotalItems  int64      `json:"totalItems"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
}

// SearchQuery is the request the ingestion pipeline sends to the external
// article search service. From and To are calendar dates, inclusive.
type SearchQuery struct {
	Keyword  string
	Language string
	From     time.Time
	To       time.Time
}

// RemoteArticle is one item as returned by the external search service.
// Only URL is guaranteed; everything else may be absent or empty.
// PublishedAt stays a string until the pipeline parses it, so a malformed
// timestamp fails one item rather than the whole response decode.
type RemoteArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	ImageURL    string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}
