package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/wartahukum/newsroom/internal/news"
)

// ArticleStore persists articles in Postgres.
type ArticleStore struct {
	db    DB
	ids   news.IDGenerator
	clock news.Clock
}

// NewArticleStore builds an ArticleStore on the shared pool.
func NewArticleStore(db DB, ids news.IDGenerator, clock news.Clock) *ArticleStore {
	return &ArticleStore{db: db, ids: ids, clock: clock}
}

const articleColumns = `a.id, a.title, a.description, a.content, a.author, a.image_url,
	a.source_url, a.published_at, a.category_id, c.name, a.created_at, a.updated_at`

func scanArticle(row pgx.Row) (news.Article, error) {
	var a news.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &a.Content, &a.Author, &a.ImageURL,
		&a.SourceURL, &a.PublishedAt, &a.CategoryID, &a.CategoryName,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Upsert creates the article unless one with the same source URL already
// exists. The existing row always wins; the run never refreshes stale data.
// Returns true when a row was created.
func (s *ArticleStore) Upsert(ctx context.Context, a news.Article) (bool, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return false, fmt.Errorf("generate article id: %w", err)
	}
	now := s.clock.Now()

	tag, err := s.db.Exec(ctx, `
INSERT INTO articles (id, title, description, content, author, image_url,
	source_url, published_at, category_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
ON CONFLICT (source_url) DO NOTHING`,
		id, a.Title, a.Description, a.Content, a.Author, a.ImageURL,
		a.SourceURL, a.PublishedAt, a.CategoryID, now)
	if err != nil {
		return false, fmt.Errorf("upsert article: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Create inserts a new article for the admin UI. Unlike Upsert, a duplicate
// source URL is reported as ErrDuplicate because the caller asked for this
// specific write.
func (s *ArticleStore) Create(ctx context.Context, a news.Article) (news.Article, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return news.Article{}, fmt.Errorf("generate article id: %w", err)
	}
	now := s.clock.Now()

	err = s.db.QueryRow(ctx, `
INSERT INTO articles (id, title, description, content, author, image_url,
	source_url, published_at, category_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
RETURNING id, created_at, updated_at`,
		id, a.Title, a.Description, a.Content, a.Author, a.ImageURL,
		a.SourceURL, a.PublishedAt, a.CategoryID, now,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isPgError(err, codeUniqueViolation) {
			return news.Article{}, news.ErrDuplicate
		}
		if isPgError(err, codeForeignKeyViolation) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

// Get returns one article with its category name.
func (s *ArticleStore) Get(ctx context.Context, id string) (news.Article, error) {
	a, err := scanArticle(s.db.QueryRow(ctx, `
SELECT `+articleColumns+`
FROM articles a
JOIN categories c ON c.id = a.category_id
WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// sortColumns whitelists the sortable columns; anything else falls back to
// recency.
var sortColumns = map[string]string{
	news.SortByTitle:       "a.title",
	news.SortByAuthor:      "a.author",
	news.SortByPublishedAt: "a.published_at",
}

// List returns a page of articles. Search matches title, description, and
// author case-insensitively; categoryID filters when set and not "all".
func (s *ArticleStore) List(ctx context.Context, q news.ArticleQuery) (news.ArticlePage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	where := []string{"TRUE"}
	args := []any{}
	if q.CategoryID != "" && q.CategoryID != "all" {
		args = append(args, q.CategoryID)
		where = append(where, fmt.Sprintf("a.category_id = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(a.title ILIKE $%d OR a.description ILIKE $%d OR a.author ILIKE $%d)", n, n, n))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM articles a WHERE "+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return news.ArticlePage{}, fmt.Errorf("count articles: %w", err)
	}

	orderColumn, ok := sortColumns[q.SortBy]
	if !ok {
		orderColumn = "a.published_at"
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		direction = "ASC"
	}

	args = append(args, q.Limit, (q.Page-1)*q.Limit)
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
SELECT `+articleColumns+`
FROM articles a
JOIN categories c ON c.id = a.category_id
WHERE %s
ORDER BY %s %s
LIMIT $%d OFFSET $%d`, whereClause, orderColumn, direction, len(args)-1, len(args)), args...)
	if err != nil {
		return news.ArticlePage{}, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []news.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return news.ArticlePage{}, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return news.ArticlePage{}, fmt.Errorf("iterate articles: %w", err)
	}

	return news.ArticlePage{
		Data:        articles,
		TotalItems:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(q.Limit))),
		CurrentPage: q.Page,
	}, nil
}

// Update rewrites the editable fields of an article.
func (s *ArticleStore) Update(ctx context.Context, a news.Article) (news.Article, error) {
	updated, err := scanArticle(s.db.QueryRow(ctx, `
UPDATE articles a SET
	title = $2,
	description = $3,
	content = $4,
	image_url = $5,
	category_id = $6,
	updated_at = $7
FROM categories c
WHERE a.id = $1 AND c.id = $6
RETURNING `+articleColumns,
		a.ID, a.Title, a.Description, a.Content, a.ImageURL, a.CategoryID, s.clock.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Article{}, news.ErrNotFound
		}
		if isPgError(err, codeForeignKeyViolation) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

// Delete removes an article.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM articles WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrNotFound
	}
	return nil
}

// Related returns up to limit articles sharing the category of id, newest
// first. When the category runs short the remainder is filled from other
// categories so detail pages always have something to show.
func (s *ArticleStore) Related(ctx context.Context, id string, limit int) ([]news.Article, error) {
	if limit < 1 {
		limit = 6
	}

	var categoryID string
	err := s.db.QueryRow(ctx,
		"SELECT category_id FROM articles WHERE id = $1", id,
	).Scan(&categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, news.ErrNotFound
		}
		return nil, fmt.Errorf("get article category: %w", err)
	}

	related, err := s.queryRelated(ctx, `
SELECT `+articleColumns+`
FROM articles a
JOIN categories c ON c.id = a.category_id
WHERE a.category_id = $1 AND a.id <> $2
ORDER BY a.published_at DESC
LIMIT $3`, categoryID, id, limit)
	if err != nil {
		return nil, err
	}

	if len(related) < limit {
		filler, err := s.queryRelated(ctx, `
SELECT `+articleColumns+`
FROM articles a
JOIN categories c ON c.id = a.category_id
WHERE a.category_id <> $1 AND a.id <> $2
ORDER BY a.published_at DESC
LIMIT $3`, categoryID, id, limit-len(related))
		if err != nil {
			return nil, err
		}
		related = append(related, filler...)
	}
	return related, nil
}

func (s *ArticleStore) queryRelated(ctx context.Context, sql string, args ...any) ([]news.Article, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list related articles: %w", err)
	}
	defer rows.Close()

	articles := []news.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan related article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate related articles: %w", err)
	}
	return articles, nil
}
