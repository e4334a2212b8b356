package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"site-cms/pkg/apperr"
	"site-cms/pkg/models"
)

const articleID = "6f1c2a4e-1d3b-4a53-9d8e-0c7b5d1e2f3a"

func TestListArticles(t *testing.T) {
	t.Run("locale filter", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().ListAdmin(gomock.Any(), "en").Return([]models.Article{
			{ID: articleID, Slug: "draft", Locale: "en", Title: "Draft", Tags: []string{}},
		}, nil)

		rec := s.do(t, http.MethodGet, "/api/admin/articles?locale=en", nil, cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		articles := decodeData[[]models.Article](t, rec)
		require.Len(t, articles, 1)
		assert.Equal(t, "draft", articles[0].Slug)
		assert.False(t, articles[0].Published)
	})

	t.Run("unsupported locale", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		rec := s.do(t, http.MethodGet, "/api/admin/articles?locale=de", nil, cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperr.CodeValidation, decode(t, rec).Code)
	})

	t.Run("store failure", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().ListAdmin(gomock.Any(), "").
			Return(nil, fmt.Errorf("list admin articles: %w", &pgconn.PgError{Code: "42P01"}))

		rec := s.do(t, http.MethodGet, "/api/admin/articles", nil, cookie)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, apperr.CodeUndefinedTable, env.Code)
		assert.Equal(t, "table not found", env.Error)
		assert.Contains(t, s.logs.String(), "url=/api/admin/articles")
		assert.Contains(t, s.logs.String(), "method=GET")
	})
}

func TestEditArticle(t *testing.T) {
	stored := &models.Article{
		ID:       articleID,
		Slug:     "hello-world",
		Locale:   "en",
		Title:    "Hello World",
		Category: strPtr("news"),
		Tags:     []string{"go"},
		Content:  "Body text.",
	}

	t.Run("yaml by default", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().GetByID(gomock.Any(), articleID).Return(stored, nil)

		rec := s.do(t, http.MethodGet, "/api/admin/articles/"+articleID, nil, cookie)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeData[models.EditableArticle](t, rec)
		assert.Equal(t, "hello-world", got.Slug)
		assert.Equal(t, "---\ntitle: Hello World\ncategory: news\ntags: [go]\n---\n\nBody text.\n", got.RawContent)
	})

	t.Run("toml", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().GetByID(gomock.Any(), articleID).Return(stored, nil)

		rec := s.do(t, http.MethodGet, "/api/admin/articles/"+articleID+"?format=toml", nil, cookie)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decodeData[models.EditableArticle](t, rec)
		assert.True(t, strings.HasPrefix(got.RawContent, "+++\n"))
	})

	t.Run("unknown format", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		rec := s.do(t, http.MethodGet, "/api/admin/articles/"+articleID+"?format=json", nil, cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().GetByID(gomock.Any(), articleID).
			Return(nil, fmt.Errorf("get article: %w", pgx.ErrNoRows))

		rec := s.do(t, http.MethodGet, "/api/admin/articles/"+articleID, nil, cookie)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateArticle(t *testing.T) {
	raw := "---\ntitle: Hello World\ndescription: First post\ntags: [go, cms]\n---\n\n# Hello\n\nBody text."

	t.Run("derives fields from frontmatter", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in models.NewArticle) (*models.Article, error) {
				assert.Equal(t, "hello-world", in.Slug)
				assert.Equal(t, "en", in.Locale)
				assert.Equal(t, "Hello World", in.Title)
				require.NotNil(t, in.Description)
				assert.Equal(t, "First post", *in.Description)
				assert.Nil(t, in.Category)
				assert.Nil(t, in.Author)
				assert.Equal(t, []string{"go", "cms"}, in.Tags)
				assert.Equal(t, "# Hello\n\nBody text.", in.Content)
				assert.True(t, in.Published)

				now := time.Now()
				return &models.Article{
					ID: articleID, Slug: in.Slug, Locale: in.Locale, Title: in.Title,
					Content: in.Content, Tags: in.Tags, Published: in.Published,
					CreatedAt: now, UpdatedAt: now,
				}, nil
			})

		rec := s.do(t, http.MethodPost, "/api/admin/articles", map[string]any{
			"rawContent": raw, "locale": "en", "published": true,
		}, cookie)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		article := decodeData[models.Article](t, rec)
		assert.Equal(t, articleID, article.ID)
		assert.Equal(t, "hello-world", article.Slug)
	})

	t.Run("defaults", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in models.NewArticle) (*models.Article, error) {
				assert.Equal(t, "fr", in.Locale)
				assert.False(t, in.Published)
				assert.Equal(t, []string{}, in.Tags)
				return &models.Article{ID: articleID, Slug: in.Slug}, nil
			})

		rec := s.do(t, http.MethodPost, "/api/admin/articles", map[string]any{
			"rawContent": "---\ntitle: Bonjour\n---\nCorps",
		}, cookie)

		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("title required", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		rec := s.do(t, http.MethodPost, "/api/admin/articles", map[string]any{
			"rawContent": "just a body", "locale": "en",
		}, cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, apperr.CodeValidation, env.Code)
		assert.Equal(t, "title is required in frontmatter", env.Error)
	})

	t.Run("unsupported locale", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		rec := s.do(t, http.MethodPost, "/api/admin/articles", map[string]any{
			"rawContent": raw, "locale": "de",
		}, cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("create article: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key"}))

		rec := s.do(t, http.MethodPost, "/api/admin/articles", map[string]any{
			"rawContent": raw, "locale": "en",
		}, cookie)

		assert.Equal(t, http.StatusConflict, rec.Code)
		env := decode(t, rec)
		assert.Equal(t, apperr.CodeUniqueViolation, env.Code)
		assert.Equal(t, "this resource already exists", env.Error)
	})
}

func TestUpdateArticle(t *testing.T) {
	t.Run("publish toggle only", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Update(gomock.Any(), articleID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, upd models.ArticleUpdate) (*models.Article, error) {
				require.NotNil(t, upd.Published)
				assert.True(t, *upd.Published)
				assert.Nil(t, upd.Content)
				assert.Nil(t, upd.Title)
				assert.Nil(t, upd.Slug)
				assert.False(t, upd.SetTags)
				return &models.Article{ID: articleID, Published: true}, nil
			})

		rec := s.do(t, http.MethodPut, "/api/admin/articles/"+articleID, map[string]any{"published": true}, cookie)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, decodeData[models.Article](t, rec).Published)
	})

	t.Run("new title recomputes slug", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Update(gomock.Any(), articleID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, upd models.ArticleUpdate) (*models.Article, error) {
				require.NotNil(t, upd.Slug)
				assert.Equal(t, "ete-a-istanbul", *upd.Slug)
				require.NotNil(t, upd.Locale)
				assert.Equal(t, "tr", *upd.Locale)
				return &models.Article{ID: articleID, Slug: *upd.Slug}, nil
			})

		rec := s.do(t, http.MethodPut, "/api/admin/articles/"+articleID, map[string]any{
			"rawContent": "---\ntitle: Été à Istanbul\n---\nbody",
			"locale":     "tr",
		}, cookie)

		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		rec := s.do(t, http.MethodPut, "/api/admin/articles/not-a-uuid", map[string]any{"published": true}, cookie)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid article id", decode(t, rec).Error)
	})

	t.Run("unknown id", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Update(gomock.Any(), articleID, gomock.Any()).
			Return(nil, fmt.Errorf("update article: %w", pgx.ErrNoRows))

		rec := s.do(t, http.MethodPut, "/api/admin/articles/"+articleID, map[string]any{"published": false}, cookie)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apperr.CodeRowNotFound, decode(t, rec).Code)
	})
}

func TestDeleteArticle(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Delete(gomock.Any(), articleID).Return(nil)

		rec := s.do(t, http.MethodDelete, "/api/admin/articles/"+articleID, nil, cookie)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, articleID, decodeData[map[string]string](t, rec)["id"])
	})

	t.Run("missing", func(t *testing.T) {
		s := newTestServer(t)
		cookie := s.login(t)

		s.store.EXPECT().Delete(gomock.Any(), articleID).
			Return(fmt.Errorf("delete article: %w", pgx.ErrNoRows))

		rec := s.do(t, http.MethodDelete, "/api/admin/articles/"+articleID, nil, cookie)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		env := decode(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "resource not found", env.Error)
	})
}
