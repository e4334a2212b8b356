package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"site-cms/pkg/apperr"
	"site-cms/pkg/config"
	"site-cms/pkg/models"
	"site-cms/pkg/services"
)

// Handler serves the admin and public JSON APIs and the sitemap.
type Handler struct {
	store     ArticleStore
	passwords PasswordVerifier
	renderer  *services.MarkdownRenderer
	cfg       *config.Config
	logger    *slog.Logger
}

func NewHandler(store ArticleStore, passwords PasswordVerifier, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		passwords: passwords,
		renderer:  services.NewMarkdownRenderer(),
		cfg:       cfg,
		logger:    logger,
	}
}

type createArticleRequest struct {
	RawContent string `json:"rawContent"`
	Locale     string `json:"locale"`
	Published  *bool  `json:"published"`
}

type updateArticleRequest struct {
	RawContent *string `json:"rawContent"`
	Locale     *string `json:"locale"`
	Published  *bool   `json:"published"`
}

// ListArticles returns every article, drafts included, optionally filtered by ?locale=.
func (h *Handler) ListArticles(c *gin.Context) (any, error) {
	locale := strings.TrimSpace(c.Query("locale"))
	if locale != "" {
		if err := h.checkLocale(locale); err != nil {
			return nil, err
		}
	}
	return h.store.ListAdmin(c.Request.Context(), locale)
}

// EditArticle returns one article, drafts included, with its raw editable text.
// ?format=toml switches the header from YAML to TOML.
func (h *Handler) EditArticle(c *gin.Context) (any, error) {
	id, err := articleID(c)
	if err != nil {
		return nil, err
	}

	format := c.DefaultQuery("format", "yaml")
	if format != "yaml" && format != "toml" {
		return nil, apperr.Validation("format must be yaml or toml")
	}

	article, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	raw, err := services.ComposeRawContent(*article, format)
	if err != nil {
		return nil, fmt.Errorf("compose raw content: %w", err)
	}
	return models.EditableArticle{Article: *article, RawContent: raw}, nil
}

func (h *Handler) CreateArticle(c *gin.Context) (any, error) {
	var req createArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.Validation("invalid request body")
	}

	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = h.cfg.Site.DefaultLocale
	}
	if err := h.checkLocale(locale); err != nil {
		return nil, err
	}

	in, err := services.BuildNewArticle(req.RawContent, locale, req.Published)
	if err != nil {
		return nil, err
	}
	return h.store.Create(c.Request.Context(), in)
}

func (h *Handler) UpdateArticle(c *gin.Context) (any, error) {
	id, err := articleID(c)
	if err != nil {
		return nil, err
	}

	var req updateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, apperr.Validation("invalid request body")
	}
	if req.Locale != nil {
		if err := h.checkLocale(*req.Locale); err != nil {
			return nil, err
		}
	}

	upd, err := services.BuildArticleUpdate(req.RawContent, req.Locale, req.Published)
	if err != nil {
		return nil, err
	}
	return h.store.Update(c.Request.Context(), id, upd)
}

func (h *Handler) DeleteArticle(c *gin.Context) (any, error) {
	id, err := articleID(c)
	if err != nil {
		return nil, err
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		return nil, err
	}
	return gin.H{"id": id}, nil
}

func (h *Handler) checkLocale(locale string) error {
	return apperr.Assert(h.cfg.HasLocale(locale), "unsupported locale: "+locale, apperr.CodeValidation, 0)
}

func articleID(c *gin.Context) (string, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", apperr.Validation("invalid article id")
	}
	return id.String(), nil
}
