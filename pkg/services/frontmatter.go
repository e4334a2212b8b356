package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"site-cms/pkg/models"
)

type frontMatterFormat struct {
	delimiter string
	unmarshal func([]byte, any) error
}

var frontMatterFormats = []frontMatterFormat{
	{delimiter: "---", unmarshal: yaml.Unmarshal},
	{delimiter: "+++", unmarshal: toml.Unmarshal},
}

// ParseFrontMatter splits raw into its header block and body. YAML headers are
// delimited by "---" lines and TOML headers by "+++" lines. Input without a
// well-formed header yields an empty map and raw unchanged as the body.
func ParseFrontMatter(raw string) (map[string]any, string) {
	str := normalizeLineEndings(raw)

	for _, format := range frontMatterFormats {
		block, body, ok := splitFrontMatter(str, format.delimiter)
		if !ok {
			continue
		}

		var fm map[string]any
		if err := format.unmarshal([]byte(block), &fm); err != nil {
			return map[string]any{}, raw
		}
		if fm == nil {
			fm = map[string]any{}
		}
		return sanitizeFrontMatter(fm), strings.TrimSpace(body)
	}

	return map[string]any{}, raw
}

// splitFrontMatter expects the first line to be delim and looks for the next
// line equal to delim. Everything between them is the block.
func splitFrontMatter(str, delim string) (string, string, bool) {
	first, rest, found := strings.Cut(str, "\n")
	if !found || strings.TrimRight(first, " \t") != delim {
		return "", "", false
	}

	offset := 0
	for {
		line, _, more := strings.Cut(rest[offset:], "\n")
		if strings.TrimRight(line, " \t") == delim {
			return rest[:offset], rest[offset+len(line):], true
		}
		if !more {
			return "", "", false
		}
		offset += len(line) + 1
	}
}

// frontMatterHeader is the header written by ComposeRawContent. Field order
// is the order editors see.
type frontMatterHeader struct {
	Title       string   `yaml:"title" toml:"title"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty"`
	Category    string   `yaml:"category,omitempty" toml:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty,flow" toml:"tags,omitempty"`
	Author      string   `yaml:"author,omitempty" toml:"author,omitempty"`
}

// ComposeRawContent rebuilds the editable text of a stored article: a header
// in the given format ("yaml" or "toml") followed by the markdown body.
// ParseFrontMatter on the result yields the article's fields back.
func ComposeRawContent(a models.Article, format string) (string, error) {
	header := frontMatterHeader{
		Title:       a.Title,
		Description: deref(a.Description),
		Category:    deref(a.Category),
		Tags:        a.Tags,
		Author:      deref(a.Author),
	}

	var buf bytes.Buffer
	switch format {
	case "", "yaml":
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(header); err != nil {
			return "", err
		}
		if err := enc.Close(); err != nil {
			return "", err
		}
		buf.WriteString("---\n")
	case "toml":
		buf.WriteString("+++\n")
		if err := toml.NewEncoder(&buf).Encode(header); err != nil {
			return "", err
		}
		buf.WriteString("+++\n")
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	if body := strings.TrimSpace(a.Content); body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ExtractFrontMatter reads the article fields out of a parsed header.
// Optional fields are nil when the key is absent.
func ExtractFrontMatter(fm map[string]any) models.ParsedFrontmatter {
	var parsed models.ParsedFrontmatter

	if v, ok := fm["title"]; ok {
		parsed.Title = strings.TrimSpace(scalarString(v))
	}
	parsed.Description = optionalString(fm, "description")
	parsed.Category = optionalString(fm, "category")
	parsed.Author = optionalString(fm, "author")

	if v, ok := fm["tags"]; ok {
		parsed.Tags = stringList(v)
		parsed.HasTags = true
	}

	return parsed
}

func optionalString(fm map[string]any, key string) *string {
	v, ok := fm[key]
	if !ok {
		return nil
	}
	s := strings.TrimSpace(scalarString(v))
	return &s
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// stringList accepts a YAML/TOML array or a comma separated string.
func stringList(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case nil:
	case []any:
		for _, item := range list {
			if s := strings.TrimSpace(scalarString(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range list {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, item := range strings.Split(scalarString(list), ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// sanitizeFrontMatter rewrites nested map[any]any values, which YAML decodes
// for non-string keys, into map[string]any so the header stays JSON-encodable.
func sanitizeFrontMatter(fm map[string]any) map[string]any {
	if fm == nil {
		return nil
	}
	sanitized := make(map[string]any, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return sanitizeFrontMatter(v)
	case map[any]any:
		normalized := make(map[string]any, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []any:
		slice := make([]any, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	default:
		return v
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
