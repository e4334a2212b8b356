package models

import "time"

// Article is a stored markdown document. Slug is unique per locale.
type Article struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Locale      string    `json:"locale"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     string    `json:"content"`
	Category    *string   `json:"category"`
	Tags        []string  `json:"tags"`
	Author      *string   `json:"author"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleMeta is the listing projection of an Article: no body, plus reading time.
type ArticleMeta struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Locale      string    `json:"locale"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Tags        []string  `json:"tags"`
	Author      *string   `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	ReadingTime string    `json:"reading_time"`
}

// NewArticle holds the fields supplied when inserting; the store assigns ID and timestamps.
type NewArticle struct {
	Slug        string
	Locale      string
	Title       string
	Description *string
	Content     string
	Category    *string
	Tags        []string
	Author      *string
	Published   bool
}

// ArticleUpdate is a partial update. Nil fields are left untouched.
type ArticleUpdate struct {
	Slug        *string
	Locale      *string
	Title       *string
	Description *string
	Content     *string
	Category    *string
	Tags        []string
	SetTags     bool
	Author      *string
	Published   *bool
}

// ParsedFrontmatter is the typed view of an article's header block.
type ParsedFrontmatter struct {
	Title       string
	Description *string
	Category    *string
	Tags        []string
	HasTags     bool
	Author      *string
}

// EditableArticle is an article together with the frontmatter+markdown text
// the admin editor works on.
type EditableArticle struct {
	Article
	RawContent string `json:"rawContent"`
}

// RenderedArticle is what public article pages receive.
type RenderedArticle struct {
	Article
	HTML        string    `json:"html"`
	Headings    []Heading `json:"headings"`
	ReadingTime string    `json:"reading_time"`
}

type Heading struct {
	Level int    `json:"level"`
	ID    string `json:"id"`
	Text  string `json:"text"`
}
