package services

import (
	"net/http"

	"site-cms/pkg/apperr"
	"site-cms/pkg/models"
)

const errSlugMessage = "title must contain at least one letter or digit"

// BuildNewArticle turns an admin submission into an insertable article.
// The title must come from the frontmatter; the slug is derived from it.
func BuildNewArticle(rawContent, locale string, published *bool) (models.NewArticle, error) {
	fm, body := ParseFrontMatter(rawContent)
	parsed := ExtractFrontMatter(fm)

	if err := apperr.Assert(parsed.Title, "title is required in frontmatter", apperr.CodeValidation, http.StatusBadRequest); err != nil {
		return models.NewArticle{}, err
	}

	slug := GenerateSlug(parsed.Title)
	if err := apperr.Assert(slug, errSlugMessage, apperr.CodeValidation, http.StatusBadRequest); err != nil {
		return models.NewArticle{}, err
	}

	tags := parsed.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.NewArticle{
		Slug:        slug,
		Locale:      locale,
		Title:       parsed.Title,
		Description: emptyToNil(parsed.Description),
		Content:     body,
		Category:    emptyToNil(parsed.Category),
		Tags:        tags,
		Author:      emptyToNil(parsed.Author),
		Published:   published != nil && *published,
	}, nil
}

// BuildArticleUpdate maps an admin edit onto a partial update. Frontmatter keys
// that are absent leave their columns alone; a title recomputes the slug.
func BuildArticleUpdate(rawContent *string, locale *string, published *bool) (models.ArticleUpdate, error) {
	upd := models.ArticleUpdate{
		Locale:    locale,
		Published: published,
	}
	if rawContent == nil {
		return upd, nil
	}

	fm, body := ParseFrontMatter(*rawContent)
	parsed := ExtractFrontMatter(fm)

	upd.Content = &body
	if parsed.Title != "" {
		title := parsed.Title
		slug := GenerateSlug(title)
		if err := apperr.Assert(slug, errSlugMessage, apperr.CodeValidation, http.StatusBadRequest); err != nil {
			return models.ArticleUpdate{}, err
		}
		upd.Title = &title
		upd.Slug = &slug
	}
	upd.Description = parsed.Description
	upd.Category = parsed.Category
	upd.Author = parsed.Author
	if parsed.HasTags {
		upd.Tags = parsed.Tags
		upd.SetTags = true
	}
	return upd, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
