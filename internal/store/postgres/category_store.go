package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/wartahukum/newsroom/internal/news"
)

// CategoryStore persists categories in Postgres.
type CategoryStore struct {
	db    DB
	ids   news.IDGenerator
	clock news.Clock
}

// NewCategoryStore builds a CategoryStore on the shared pool.
func NewCategoryStore(db DB, ids news.IDGenerator, clock news.Clock) *CategoryStore {
	return &CategoryStore{db: db, ids: ids, clock: clock}
}

const categoryColumns = "id, name, created_at, updated_at"

// Upsert creates the category unless one with the exact name exists. The
// match is case-sensitive on purpose: this is the ingestion path, which
// mirrors the keyword string byte for byte. A concurrent insert losing the
// race is benign; the follow-up select returns whichever row won.
func (s *CategoryStore) Upsert(ctx context.Context, name string) (news.Category, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return news.Category{}, fmt.Errorf("generate category id: %w", err)
	}
	now := s.clock.Now()

	if _, err := s.db.Exec(ctx, `
INSERT INTO categories (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (name) DO NOTHING`, id, name, now); err != nil {
		return news.Category{}, fmt.Errorf("upsert category: %w", err)
	}

	var c news.Category
	err = s.db.QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE name = $1", name,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return news.Category{}, fmt.Errorf("fetch upserted category: %w", err)
	}
	return c, nil
}

// Create inserts a new category for the admin UI, refusing names that
// collide case-insensitively with an existing one.
func (s *CategoryStore) Create(ctx context.Context, name string) (news.Category, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1))", name,
	).Scan(&exists)
	if err != nil {
		return news.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return news.Category{}, news.ErrDuplicate
	}

	id, err := s.ids.NewID()
	if err != nil {
		return news.Category{}, fmt.Errorf("generate category id: %w", err)
	}
	now := s.clock.Now()

	var c news.Category
	err = s.db.QueryRow(ctx, `
INSERT INTO categories (id, name, created_at, updated_at)
VALUES ($1, $2, $3, $3)
RETURNING `+categoryColumns, id, name, now,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isPgError(err, codeUniqueViolation) {
			return news.Category{}, news.ErrDuplicate
		}
		return news.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// Get returns one category with its article count.
func (s *CategoryStore) Get(ctx context.Context, id string) (news.Category, error) {
	var c news.Category
	err := s.db.QueryRow(ctx, `
SELECT c.id, c.name, c.created_at, c.updated_at, COUNT(a.id)
FROM categories c
LEFT JOIN articles a ON a.category_id = c.id
WHERE c.id = $1
GROUP BY c.id, c.name, c.created_at, c.updated_at`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.ArticleCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Category{}, news.ErrNotFound
		}
		return news.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// List returns a page of categories ordered by name, with article counts.
// Search matches the name case-insensitively.
func (s *CategoryStore) List(ctx context.Context, q news.CategoryQuery) (news.CategoryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	var total int64
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM categories WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')",
		q.Search,
	).Scan(&total)
	if err != nil {
		return news.CategoryPage{}, fmt.Errorf("count categories: %w", err)
	}

	rows, err := s.db.Query(ctx, `
SELECT c.id, c.name, c.created_at, c.updated_at, COUNT(a.id)
FROM categories c
LEFT JOIN articles a ON a.category_id = c.id
WHERE ($1 = '' OR c.name ILIKE '%' || $1 || '%')
GROUP BY c.id, c.name, c.created_at, c.updated_at
ORDER BY c.name ASC
LIMIT $2 OFFSET $3`, q.Search, q.Limit, (q.Page-1)*q.Limit)
	if err != nil {
		return news.CategoryPage{}, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []news.Category{}
	for rows.Next() {
		var c news.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.ArticleCount); err != nil {
			return news.CategoryPage{}, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return news.CategoryPage{}, fmt.Errorf("iterate categories: %w", err)
	}

	return news.CategoryPage{
		Data:        categories,
		TotalItems:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(q.Limit))),
		CurrentPage: q.Page,
	}, nil
}

// Update renames a category, refusing case-insensitive collisions with any
// other category.
func (s *CategoryStore) Update(ctx context.Context, id, name string) (news.Category, error) {
	var duplicate bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1) AND id <> $2)",
		name, id,
	).Scan(&duplicate)
	if err != nil {
		return news.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if duplicate {
		return news.Category{}, news.ErrDuplicate
	}

	var c news.Category
	err = s.db.QueryRow(ctx, `
UPDATE categories SET name = $2, updated_at = $3
WHERE id = $1
RETURNING `+categoryColumns, id, name, s.clock.Now(),
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Category{}, news.ErrNotFound
		}
		return news.Category{}, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

// Delete removes an empty category. Categories still referenced by articles
// are refused rather than cascaded.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	var articleCount int64
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM articles WHERE category_id = $1", id,
	).Scan(&articleCount)
	if err != nil {
		return fmt.Errorf("count category articles: %w", err)
	}
	if articleCount > 0 {
		return news.ErrCategoryInUse
	}

	tag, err := s.db.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		if isPgError(err, codeForeignKeyViolation) {
			return news.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrNotFound
	}
	return nil
}
