package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// Supported values for the feed format setting.
const (
	FormatJSON = "json"
	FormatRSS  = "rss"
)

// Parser turns a raw feed document into articles in document order.
type Parser interface {
	Parse(body string) ([]models.Article, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(body string) ([]models.Article, error)

func (f ParserFunc) Parse(body string) ([]models.Article, error) { return f(body) }

// ParserFor returns the parser for a feed format.
func ParserFor(format string) (Parser, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return ParserFunc(ParseContentAPI), nil
	case FormatRSS:
		return ParserFunc(ParseRSS), nil
	default:
		return nil, fmt.Errorf("unknown feed format %q", format)
	}
}

// ParseContentAPI parses a content API search response:
//
//	{"response": {"results": [{"sectionName", "webPublicationDate", "webUrl",
//	  "fields": {"headline", "thumbnail"}, "tags": [{"webTitle"}]}]}}
//
// A missing or mistyped required field fails the whole document. A missing
// contributor only leaves the article without an author.
func ParseContentAPI(body string) ([]models.Article, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || trimmed == "null" {
		return nil, ErrEmptyInput
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}

	var response map[string]json.RawMessage
	if !objectField(root, "response", &response) {
		return nil, fmt.Errorf("%w: missing response object", ErrMalformedStructure)
	}

	raw, ok := response["results"]
	if !ok || isNull(raw) {
		return nil, fmt.Errorf("%w: missing results array", ErrMalformedStructure)
	}
	var results []json.RawMessage
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("%w: results is not an array", ErrMalformedStructure)
	}

	articles := make([]models.Article, 0, len(results))
	for i, item := range results {
		article, err := parseResult(i, item)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func parseResult(index int, raw json.RawMessage) (models.Article, error) {
	var item map[string]json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &item) != nil {
		return models.Article{}, fmt.Errorf("%w: result %d is not an object", ErrMalformedStructure, index)
	}

	missing := func(path string) error {
		return &MissingFieldError{Index: index, Path: path}
	}

	section, ok := requiredString(item, "sectionName")
	if !ok {
		return models.Article{}, missing("sectionName")
	}
	published, ok := requiredString(item, "webPublicationDate")
	if !ok {
		return models.Article{}, missing("webPublicationDate")
	}
	webURL, ok := requiredString(item, "webUrl")
	if !ok {
		return models.Article{}, missing("webUrl")
	}

	var fields map[string]json.RawMessage
	if !objectField(item, "fields", &fields) {
		return models.Article{}, missing("fields")
	}
	headline, ok := requiredString(fields, "headline")
	if !ok {
		return models.Article{}, missing("fields.headline")
	}
	// An empty thumbnail is allowed; the image loader shows a placeholder.
	thumbnail, ok := stringField(fields, "thumbnail")
	if !ok {
		return models.Article{}, missing("fields.thumbnail")
	}

	article, err := models.NewArticle(models.ArticleFields{
		Headline:    headline,
		Thumbnail:   thumbnail,
		Author:      firstContributor(item),
		WebURL:      webURL,
		Category:    section,
		PublishedAt: published,
	})
	if err != nil {
		return models.Article{}, fmt.Errorf("result %d: %w", index, err)
	}
	return article, nil
}

// firstContributor reads tags[0].webTitle. Anything unexpected yields "".
func firstContributor(item map[string]json.RawMessage) string {
	raw, ok := item["tags"]
	if !ok {
		return ""
	}
	var tags []json.RawMessage
	if json.Unmarshal(raw, &tags) != nil || len(tags) == 0 {
		return ""
	}
	var tag map[string]json.RawMessage
	if isNull(tags[0]) || json.Unmarshal(tags[0], &tag) != nil {
		return ""
	}
	name, _ := stringField(tag, "webTitle")
	return name
}

func objectField(obj map[string]json.RawMessage, key string, dst *map[string]json.RawMessage) bool {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func stringField(obj map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func requiredString(obj map[string]json.RawMessage, key string) (string, bool) {
	s, ok := stringField(obj, key)
	return s, ok && s != ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
