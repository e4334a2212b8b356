package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"site-cms/pkg/apperr"
	"site-cms/pkg/models"
	"site-cms/pkg/services"
)

type siteInfo struct {
	URL           string   `json:"url"`
	Locales       []string `json:"locales"`
	DefaultLocale string   `json:"default_locale"`
	AnonKey       string   `json:"anon_key"`
}

// RequireLocale answers 404 for locales the site does not publish.
func (h *Handler) RequireLocale(c *gin.Context) {
	if !h.cfg.HasLocale(c.Param("locale")) {
		abortWithError(c, apperr.NotFound("unknown locale"))
		return
	}
	c.Next()
}

// PublishedArticles lists published articles, narrowed by ?tag= and ?category=.
func (h *Handler) PublishedArticles(c *gin.Context) (any, error) {
	articles := h.store.ListPublished(c.Request.Context(), c.Param("locale"))
	return services.FilterArticles(articles, c.Query("tag"), c.Query("category")), nil
}

func (h *Handler) PublishedArticle(c *gin.Context) (any, error) {
	article, err := h.store.GetBySlug(c.Request.Context(), c.Param("locale"), c.Param("slug"))
	if err != nil {
		return nil, err
	}

	rendered, err := h.renderer.Render([]byte(article.Content))
	if err != nil {
		return nil, fmt.Errorf("render article %s: %w", article.Slug, err)
	}

	return models.RenderedArticle{
		Article:     *article,
		HTML:        rendered.HTML,
		Headings:    rendered.Headings,
		ReadingTime: services.ReadingTime(article.Content),
	}, nil
}

func (h *Handler) Categories(c *gin.Context) (any, error) {
	return h.store.ListCategories(c.Request.Context(), c.Param("locale")), nil
}

func (h *Handler) Tags(c *gin.Context) (any, error) {
	return h.store.ListTags(c.Request.Context(), c.Param("locale")), nil
}

func (h *Handler) Search(c *gin.Context) (any, error) {
	return h.store.Search(c.Request.Context(), c.Param("locale"), c.Query("q")), nil
}

// Site exposes the public part of the configuration to the front end.
func (h *Handler) Site(c *gin.Context) (any, error) {
	return siteInfo{
		URL:           h.cfg.Site.URL,
		Locales:       h.cfg.Site.Locales,
		DefaultLocale: h.cfg.Site.DefaultLocale,
		AnonKey:       h.cfg.Database.AnonKey,
	}, nil
}
