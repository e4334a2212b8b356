package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"site-cms/pkg/apperr"
	"site-cms/pkg/models"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var ErrArticleNotFound = apperr.NotFound("article not found")

var articleColumns = []string{
	"id::text", "slug", "locale", "title", "description", "content",
	"category", "tags", "author", "published", "created_at", "updated_at",
}

var metaColumns = []string{
	"id::text", "slug", "locale", "title", "description",
	"category", "tags", "author", "created_at", "content",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleRepository reads and writes articles. Every call queries the store;
// nothing is cached between requests.
//
// Public read paths (ListPublished, GetBySlug, ListCategories, ListTags,
// Search) are fail-soft: a store failure is logged and an empty or not-found
// result returned. Admin
// paths (Create, Update, Delete, ListAdmin, GetByID) are fail-loud and return
// the store error for the HTTP layer to translate. Keep the two apart.
type ArticleRepository struct {
	db     DB
	logger *slog.Logger
}

func NewArticleRepository(db DB, logger *slog.Logger) *ArticleRepository {
	return &ArticleRepository{db: db, logger: logger}
}

// readSoft runs a public read and swallows its error after logging it.
func readSoft[T any](r *ArticleRepository, op string, fallback T, fn func() (T, error), attrs ...any) T {
	out, err := fn()
	if err != nil {
		args := append([]any{"operation", op, "error", err}, attrs...)
		r.logger.Error("article read failed", args...)
		return fallback
	}
	return out
}

// writeLoud runs an admin operation and hands its error back with op attached.
func writeLoud[T any](op string, fn func() (T, error)) (T, error) {
	out, err := fn()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListPublished returns published articles for locale, newest first.
func (r *ArticleRepository) ListPublished(ctx context.Context, locale string) []models.ArticleMeta {
	return readSoft(r, "list published", []models.ArticleMeta{}, func() ([]models.ArticleMeta, error) {
		query := `SELECT ` + strings.Join(metaColumns, ", ") + `
			FROM articles
			WHERE locale = $1 AND published = true
			ORDER BY created_at DESC`
		return r.queryMetas(ctx, query, locale)
	}, "locale", locale)
}

// Search delegates ranking to the store's full-text index.
func (r *ArticleRepository) Search(ctx context.Context, locale, query string) []models.ArticleMeta {
	if strings.TrimSpace(query) == "" {
		return []models.ArticleMeta{}
	}
	return readSoft(r, "search", []models.ArticleMeta{}, func() ([]models.ArticleMeta, error) {
		sql := `SELECT ` + strings.Join(metaColumns, ", ") + `
			FROM articles
			WHERE locale = $1 AND published = true AND fts @@ websearch_to_tsquery('simple', $2)
			ORDER BY created_at DESC`
		return r.queryMetas(ctx, sql, locale, query)
	}, "locale", locale, "query", query)
}

// GetBySlug returns the published article for (locale, slug). Zero rows and
// store failures both yield ErrArticleNotFound; failures are logged first.
func (r *ArticleRepository) GetBySlug(ctx context.Context, locale, slug string) (*models.Article, error) {
	query := `SELECT ` + strings.Join(articleColumns, ", ") + `
		FROM articles
		WHERE locale = $1 AND slug = $2 AND published = true
		LIMIT 1`

	article := readSoft(r, "get by slug", (*models.Article)(nil), func() (*models.Article, error) {
		article, err := scanArticle(r.db.QueryRow(ctx, query, locale, slug))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &article, nil
	}, "locale", locale, "slug", slug)
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// ListCategories returns the sorted distinct categories of published articles.
func (r *ArticleRepository) ListCategories(ctx context.Context, locale string) []string {
	return readSoft(r, "list categories", []string{}, func() ([]string, error) {
		rows, err := r.db.Query(ctx, `SELECT category FROM articles
			WHERE locale = $1 AND published = true AND category IS NOT NULL`, locale)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		set := map[string]struct{}{}
		for rows.Next() {
			var category string
			if err := rows.Scan(&category); err != nil {
				return nil, err
			}
			if category != "" {
				set[category] = struct{}{}
			}
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return sortedKeys(set), nil
	}, "locale", locale)
}

// ListTags returns the sorted union of tags across published articles.
func (r *ArticleRepository) ListTags(ctx context.Context, locale string) []string {
	return readSoft(r, "list tags", []string{}, func() ([]string, error) {
		rows, err := r.db.Query(ctx, `SELECT tags FROM articles
			WHERE locale = $1 AND published = true`, locale)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		set := map[string]struct{}{}
		for rows.Next() {
			var tags []string
			if err := rows.Scan(&tags); err != nil {
				return nil, err
			}
			for _, tag := range tags {
				if tag != "" {
					set[tag] = struct{}{}
				}
			}
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return sortedKeys(set), nil
	}, "locale", locale)
}

// ListAdmin returns every article, drafts included, optionally for one locale.
func (r *ArticleRepository) ListAdmin(ctx context.Context, locale string) ([]models.Article, error) {
	return writeLoud("list admin articles", func() ([]models.Article, error) {
		builder := psql.Select(articleColumns...).From("articles").OrderBy("created_at DESC")
		if locale != "" {
			builder = builder.Where(sq.Eq{"locale": locale})
		}
		query, args, err := builder.ToSql()
		if err != nil {
			return nil, err
		}

		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		articles := []models.Article{}
		for rows.Next() {
			article, err := scanArticle(rows)
			if err != nil {
				return nil, err
			}
			articles = append(articles, article)
		}
		return articles, rows.Err()
	})
}

// GetByID returns any article, drafts included. A missing id yields pgx.ErrNoRows.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return writeLoud("get article", func() (*models.Article, error) {
		query := `SELECT ` + strings.Join(articleColumns, ", ") + ` FROM articles WHERE id = $1`
		article, err := scanArticle(r.db.QueryRow(ctx, query, id))
		if err != nil {
			return nil, err
		}
		return &article, nil
	})
}

// Create inserts a new article and returns the stored row.
func (r *ArticleRepository) Create(ctx context.Context, in models.NewArticle) (*models.Article, error) {
	return writeLoud("create article", func() (*models.Article, error) {
		tags := in.Tags
		if tags == nil {
			tags = []string{}
		}

		query := `INSERT INTO articles (slug, locale, title, description, content, category, tags, author, published)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING ` + strings.Join(articleColumns, ", ")

		article, err := scanArticle(r.db.QueryRow(ctx, query,
			in.Slug, in.Locale, in.Title, in.Description, in.Content,
			in.Category, tags, in.Author, in.Published,
		))
		if err != nil {
			return nil, err
		}
		r.logger.Info("article created", "id", article.ID, "locale", article.Locale, "slug", article.Slug)
		return &article, nil
	})
}

// Update applies only the non-nil fields of upd. An empty Description,
// Category or Author clears the column. Slug recomputation on a title change
// is the caller's job.
func (r *ArticleRepository) Update(ctx context.Context, id string, upd models.ArticleUpdate) (*models.Article, error) {
	return writeLoud("update article", func() (*models.Article, error) {
		set := map[string]any{"updated_at": sq.Expr("NOW()")}
		if upd.Slug != nil {
			set["slug"] = *upd.Slug
		}
		if upd.Locale != nil {
			set["locale"] = *upd.Locale
		}
		if upd.Title != nil {
			set["title"] = *upd.Title
		}
		if upd.Content != nil {
			set["content"] = *upd.Content
		}
		if upd.Description != nil {
			set["description"] = nullable(*upd.Description)
		}
		if upd.Category != nil {
			set["category"] = nullable(*upd.Category)
		}
		if upd.Author != nil {
			set["author"] = nullable(*upd.Author)
		}
		if upd.SetTags {
			tags := upd.Tags
			if tags == nil {
				tags = []string{}
			}
			set["tags"] = tags
		}
		if upd.Published != nil {
			set["published"] = *upd.Published
		}

		query, args, err := psql.Update("articles").
			SetMap(set).
			Where(sq.Eq{"id": id}).
			Suffix("RETURNING " + strings.Join(articleColumns, ", ")).
			ToSql()
		if err != nil {
			return nil, err
		}

		article, err := scanArticle(r.db.QueryRow(ctx, query, args...))
		if err != nil {
			return nil, err
		}
		r.logger.Info("article updated", "id", article.ID, "locale", article.Locale, "slug", article.Slug)
		return &article, nil
	})
}

// Delete removes the article. A missing id yields pgx.ErrNoRows.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	_, err := writeLoud("delete article", func() (struct{}, error) {
		tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
		if err != nil {
			return struct{}{}, err
		}
		if tag.RowsAffected() == 0 {
			return struct{}{}, pgx.ErrNoRows
		}
		r.logger.Info("article deleted", "id", id)
		return struct{}{}, nil
	})
	return err
}

func (r *ArticleRepository) queryMetas(ctx context.Context, query string, args ...any) ([]models.ArticleMeta, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metas := []models.ArticleMeta{}
	for rows.Next() {
		var m models.ArticleMeta
		var content string
		if err := rows.Scan(
			&m.ID, &m.Slug, &m.Locale, &m.Title, &m.Description,
			&m.Category, &m.Tags, &m.Author, &m.CreatedAt, &content,
		); err != nil {
			return nil, err
		}
		if m.Tags == nil {
			m.Tags = []string{}
		}
		m.ReadingTime = ReadingTime(content)
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (models.Article, error) {
	var a models.Article
	err := row.Scan(
		&a.ID, &a.Slug, &a.Locale, &a.Title, &a.Description, &a.Content,
		&a.Category, &a.Tags, &a.Author, &a.Published, &a.CreatedAt, &a.UpdatedAt,
	)
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return a, err
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
