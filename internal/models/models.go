package models

import (
	"errors"
	"fmt"
	"time"
)

// TimestampLayout is the UTC layout publication timestamps are stored in.
const TimestampLayout = "2006-01-02T15:04:05Z"

// ErrRequiredField is returned by NewArticle when a required field is empty.
var ErrRequiredField = errors.New("required field is empty")

// ArticleFields carries the raw values used to build an Article.
// An empty Author means the source named no contributor.
type ArticleFields struct {
	Headline    string
	Thumbnail   string
	Author      string
	WebURL      string
	Category    string
	PublishedAt string
}

// Article is a single news item parsed from one feed response.
// Fields are unexported so a constructed Article cannot change; compare
// two articles with ==.
type Article struct {
	headline    string
	thumbnail   string
	author      string
	webURL      string
	category    string
	publishedAt string
}

// NewArticle validates f and returns the Article it describes.
// Thumbnail may be empty; headline, web URL, category and publication
// timestamp may not.
func NewArticle(f ArticleFields) (Article, error) {
	required := []struct{ name, value string }{
		{"headline", f.Headline},
		{"webUrl", f.WebURL},
		{"category", f.Category},
		{"publicationTimestamp", f.PublishedAt},
	}
	for _, r := range required {
		if r.value == "" {
			return Article{}, fmt.Errorf("%w: %s", ErrRequiredField, r.name)
		}
	}

	return Article{
		headline:    f.Headline,
		thumbnail:   f.Thumbnail,
		author:      f.Author,
		webURL:      f.WebURL,
		category:    f.Category,
		publishedAt: f.PublishedAt,
	}, nil
}

func (a Article) Headline() string  { return a.headline }
func (a Article) Thumbnail() string { return a.thumbnail }
func (a Article) WebURL() string    { return a.webURL }
func (a Article) Category() string  { return a.category }

// PublishedAt returns the publication timestamp exactly as received,
// e.g. "2021-03-15T10:00:00Z".
func (a Article) PublishedAt() string { return a.publishedAt }

// Author returns the contributor name and whether one was present.
func (a Article) Author() (string, bool) {
	return a.author, a.author != ""
}

// Fields returns a copy of the values the article was built from.
func (a Article) Fields() ArticleFields {
	return ArticleFields{
		Headline:    a.headline,
		Thumbnail:   a.thumbnail,
		Author:      a.author,
		WebURL:      a.webURL,
		Category:    a.category,
		PublishedAt: a.publishedAt,
	}
}

// State describes what the presentation layer should show for a snapshot.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
	StateOffline State = "offline"
	StateFailed  State = "failed"
)

// Snapshot is the outcome of one load cycle as handed to presentation.
type Snapshot struct {
	LoadID    string
	State     State
	Articles  []Article
	FetchedAt time.Time
	Err       error
}
