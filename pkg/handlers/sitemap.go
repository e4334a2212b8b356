package handlers

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

// Sitemap lists each locale home page followed by its published articles.
// Article lookups are fail-soft, so an unreachable store still yields the
// locale entries.
func (h *Handler) Sitemap(c *gin.Context) {
	now := time.Now().UTC().Format(time.DateOnly)
	base := h.cfg.Site.URL

	set := sitemapURLSet{Xmlns: sitemapNamespace}
	for _, locale := range h.cfg.Site.Locales {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + "/" + locale,
			LastMod:    now,
			ChangeFreq: "weekly",
			Priority:   1,
		})
	}
	for _, locale := range h.cfg.Site.Locales {
		for _, article := range h.store.ListPublished(c.Request.Context(), locale) {
			set.URLs = append(set.URLs, sitemapURL{
				Loc:        base + "/" + locale + "/content/" + article.Slug,
				LastMod:    article.CreatedAt.UTC().Format(time.DateOnly),
				ChangeFreq: "monthly",
				Priority:   0.8,
			})
		}
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.logger.Error("failed to encode sitemap", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), body...))
}
