package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// ParseRSS parses an RSS or Atom document into articles. Required per
// item: title, link, a category and a publish (or update) time.
func ParseRSS(body string) ([]models.Article, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyInput
	}

	parsed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
	}

	articles := make([]models.Article, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		if item == nil {
			continue
		}
		missing := func(path string) error {
			return &MissingFieldError{Index: i, Path: path}
		}

		headline := item.Title
		if strings.TrimSpace(headline) == "" {
			return nil, missing("title")
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			return nil, missing("link")
		}
		category := firstCategory(item.Categories)
		if category == "" {
			return nil, missing("category")
		}

		pub := item.PublishedParsed
		if pub == nil {
			pub = item.UpdatedParsed
		}
		if pub == nil {
			return nil, missing("published")
		}

		article, err := models.NewArticle(models.ArticleFields{
			Headline:    headline,
			Thumbnail:   itemImageURL(item),
			Author:      itemAuthor(item),
			WebURL:      link,
			Category:    category,
			PublishedAt: pub.UTC().Format(models.TimestampLayout),
		})
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func firstCategory(categories []string) string {
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func itemAuthor(item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return strings.TrimSpace(p.Name)
		}
	}
	return ""
}

// itemImageURL picks the item image, then media:thumbnail, then
// media:content, then an image enclosure. Only http(s) URLs qualify.
func itemImageURL(item *gofeed.Item) string {
	if item.Image != nil && isHTTPURL(item.Image.URL) {
		return item.Image.URL
	}

	if media, ok := item.Extensions["media"]; ok {
		for _, thumb := range media["thumbnail"] {
			if u := thumb.Attrs["url"]; isHTTPURL(u) {
				return u
			}
		}
		for _, content := range media["content"] {
			medium := content.Attrs["medium"]
			if medium != "" && medium != "image" {
				continue
			}
			if u := content.Attrs["url"]; isHTTPURL(u) {
				return u
			}
		}
	}

	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && isHTTPURL(enc.URL) {
			return enc.URL
		}
	}
	return ""
}

func isHTTPURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
