package services

import (
	"slices"

	"site-cms/pkg/models"
)

// FilterArticles keeps the articles carrying tag (when set) and in category (when set).
func FilterArticles(articles []models.ArticleMeta, tag, category string) []models.ArticleMeta {
	if tag == "" && category == "" {
		return articles
	}

	out := make([]models.ArticleMeta, 0, len(articles))
	for _, a := range articles {
		if tag != "" && !slices.Contains(a.Tags, tag) {
			continue
		}
		if category != "" && (a.Category == nil || *a.Category != category) {
			continue
		}
		out = append(out, a)
	}
	return out
}
