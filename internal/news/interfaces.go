package news

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across the storage implementations. The HTTP layer
// maps these to status codes; the ingestion pipeline treats ErrNotFound from
// the user store as its precondition gate.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already exists")
	ErrCategoryInUse = errors.New("category still has articles")
)

// UserStore persists accounts.
type UserStore interface {
	// Create inserts a new user. A duplicate email returns ErrDuplicate.
	Create(ctx context.Context, u User) (User, error)

	// GetByEmail returns the user with the given email or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)

	// FindFirstByRole returns any one user holding the role, or ErrNotFound.
	FindFirstByRole(ctx context.Context, role string) (User, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	// Upsert creates a category with the exact name if none exists and
	// returns the stored row either way. The name match is case-sensitive;
	// a concurrent insert of the same name must not surface as an error.
	Upsert(ctx context.Context, name string) (Category, error)

	// Create inserts a new category, refusing case-insensitive duplicates
	// with ErrDuplicate. This is the admin path, not the ingestion path.
	Create(ctx context.Context, name string) (Category, error)

	Get(ctx context.Context, id string) (Category, error)
	List(ctx context.Context, q CategoryQuery) (CategoryPage, error)

	// Update renames a category, refusing case-insensitive duplicates.
	Update(ctx context.Context, id, name string) (Category, error)

	// Delete removes a category, returning ErrCategoryInUse while articles
	// still reference it.
	Delete(ctx context.Context, id string) error
}

// ArticleStore persists articles.
type ArticleStore interface {
	// Upsert creates the article unless one with the same source URL already
	// exists, in which case the existing row is left untouched. The boolean
	// reports whether a row was created.
	Upsert(ctx context.Context, a Article) (bool, error)

	// Create inserts a new article. Unlike Upsert, a duplicate source URL is
	// an error (ErrDuplicate) because the admin asked for a specific write.
	Create(ctx context.Context, a Article) (Article, error)

	Get(ctx context.Context, id string) (Article, error)
	List(ctx context.Context, q ArticleQuery) (ArticlePage, error)
	Update(ctx context.Context, a Article) (Article, error)
	Delete(ctx context.Context, id string) error

	// Related returns up to limit articles from the same category as id,
	// newest first, topped up from other categories when the category runs
	// short.
	Related(ctx context.Context, id string, limit int) ([]Article, error)
}

// ArticleSearcher queries the external article search service.
type ArticleSearcher interface {
	Search(ctx context.Context, q SearchQuery) ([]RemoteArticle, error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for new rows.
type IDGenerator interface {
	NewID() (string, error)
}
