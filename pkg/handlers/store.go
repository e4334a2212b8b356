package handlers

import (
	"context"

	"site-cms/pkg/models"
)

//go:generate mockgen -source=store.go -destination=../mocks/mock_article_store.go -package=mocks

// ArticleStore is what the HTTP layer needs from the article repository.
// The list and search methods never fail; they degrade to empty results.
type ArticleStore interface {
	ListPublished(ctx context.Context, locale string) []models.ArticleMeta
	Search(ctx context.Context, locale, query string) []models.ArticleMeta
	GetBySlug(ctx context.Context, locale, slug string) (*models.Article, error)
	ListCategories(ctx context.Context, locale string) []string
	ListTags(ctx context.Context, locale string) []string

	ListAdmin(ctx context.Context, locale string) ([]models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Create(ctx context.Context, in models.NewArticle) (*models.Article, error)
	Update(ctx context.Context, id string, upd models.ArticleUpdate) (*models.Article, error)
	Delete(ctx context.Context, id string) error
}

// PasswordVerifier checks a submitted admin password.
type PasswordVerifier interface {
	Check(password string) bool
}
