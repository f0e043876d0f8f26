// Package ingest implements the scheduled ingestion pipeline that pulls
// recent articles for a fixed keyword list from the external search service
// and upserts them into storage.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wartahukum/newsroom/internal/news"
	"github.com/wartahukum/newsroom/internal/telemetry"
)

// Config controls one pipeline instance.
type Config struct {
	Keywords   []string
	Language   string
	WindowDays int
}

// Pipeline pulls recent articles per keyword and persists them. All writes
// are upserts keyed on unique columns, so re-running a schedule is safe: a
// second pass over the same payload creates nothing.
type Pipeline struct {
	users      news.UserStore
	categories news.CategoryStore
	articles   news.ArticleStore
	searcher   news.ArticleSearcher
	clock      news.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Pipeline. The storage connection behind the stores is
// owned by the caller, which releases it once the run returns.
func New(
	users news.UserStore,
	categories news.CategoryStore,
	articles news.ArticleStore,
	searcher news.ArticleSearcher,
	clock news.Clock,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		users:      users,
		categories: categories,
		articles:   articles,
		searcher:   searcher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one ingestion pass over every configured keyword, in order.
// A failing keyword contributes zero articles but never stops the others;
// a malformed item is skipped without aborting the rest of its batch.
// Without an admin user the run aborts before any write and returns nil:
// that is a precondition for a batch job, not a caller-visible failure.
func (p *Pipeline) Run(ctx context.Context) error {
	if _, err := p.users.FindFirstByRole(ctx, news.RoleAdmin); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			p.logger.Error("no admin user exists; aborting ingestion run")
			telemetry.ObserveIngestRun("aborted")
			return nil
		}
		telemetry.ObserveIngestRun("error")
		return fmt.Errorf("check admin user: %w", err)
	}

	// The window is anchored to the run's start time, not re-computed per
	// keyword: [today-window, today] as inclusive calendar dates.
	to := p.clock.Now()
	from := to.AddDate(0, 0, -p.cfg.WindowDays)

	for _, keyword := range p.cfg.Keywords {
		if ctx.Err() != nil {
			telemetry.ObserveIngestRun("canceled")
			return ctx.Err()
		}
		p.ingestKeyword(ctx, keyword, from, to)
	}

	telemetry.ObserveIngestRun("completed")
	return nil
}

func (p *Pipeline) ingestKeyword(ctx context.Context, keyword string, from, to time.Time) {
	category, err := p.categories.Upsert(ctx, keyword)
	if err != nil {
		p.logger.Error("category upsert failed",
			zap.String("keyword", keyword), zap.Error(err))
		telemetry.ObserveKeywordFailure(keyword)
		return
	}

	items, err := p.searcher.Search(ctx, news.SearchQuery{
		Keyword:  keyword,
		Language: p.cfg.Language,
		From:     from,
		To:       to,
	})
	if err != nil {
		p.logger.Warn("search failed; keyword skipped this run",
			zap.String("keyword", keyword), zap.Error(err))
		telemetry.ObserveKeywordFailure(keyword)
		return
	}

	var created, duplicate, skipped int
	for _, item := range items {
		ok, err := p.ingestItem(ctx, category.ID, item)
		switch {
		case err != nil:
			skipped++
			telemetry.ObserveIngestArticle(telemetry.OutcomeSkipped)
			p.logger.Warn("article skipped",
				zap.String("keyword", keyword),
				zap.String("source_url", item.URL),
				zap.Error(err))
		case ok:
			created++
			telemetry.ObserveIngestArticle(telemetry.OutcomeCreated)
		default:
			duplicate++
			telemetry.ObserveIngestArticle(telemetry.OutcomeDuplicate)
		}
	}

	p.logger.Info("keyword ingested",
		zap.String("keyword", keyword),
		zap.Int("created", created),
		zap.Int("duplicate", duplicate),
		zap.Int("skipped", skipped),
	)
}

// ingestItem maps one remote item into an Article and upserts it. The
// boolean reports whether a new row was created; an existing source URL
// leaves the stored row untouched.
func (p *Pipeline) ingestItem(ctx context.Context, categoryID string, item news.RemoteArticle) (bool, error) {
	if item.URL == "" {
		return false, errors.New("item has no source url")
	}
	if item.Title == "" {
		return false, errors.New("item has no title")
	}
	publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
	if err != nil {
		return false, fmt.Errorf("parse publishedAt %q: %w", item.PublishedAt, err)
	}

	article := news.Article{
		Title:       item.Title,
		Description: item.Description,
		Content:     item.Content,
		Author:      optional(item.Author),
		ImageURL:    optional(item.ImageURL),
		SourceURL:   item.URL,
		PublishedAt: publishedAt,
		CategoryID:  categoryID,
	}
	ok, err := p.articles.Upsert(ctx, article)
	if err != nil {
		return false, fmt.Errorf("upsert article: %w", err)
	}
	return ok, nil
}

// optional maps an absent upstream string field to NULL rather than "".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
