// Package render binds articles to display rows and decides which
// state the presentation layer shows.
package render

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/raffaelramalhorosa/techfeed/internal/feed"
	"github.com/raffaelramalhorosa/techfeed/internal/models"
)

// Row is one article as shown to the user.
type Row struct {
	Section   string `json:"section"`
	Headline  string `json:"headline"`
	Author    string `json:"author,omitempty"`
	Date      string `json:"date,omitempty"`
	Published string `json:"published"`
	Thumbnail string `json:"thumbnail"`
	WebURL    string `json:"web_url"`
}

// Navigator opens an article link in a browsing surface.
type Navigator interface {
	Open(webURL string) error
}

// ThumbnailLoader renders a thumbnail somewhere. Failures are cosmetic:
// the loader shows a placeholder and never reports back.
type ThumbnailLoader interface {
	Load(thumbnailURL string)
}

// NopThumbnails is used where no images are displayed.
type NopThumbnails struct{}

func (NopThumbnails) Load(string) {}

// WriterNavigator "opens" a link by printing it.
type WriterNavigator struct {
	W io.Writer
}

func (n WriterNavigator) Open(webURL string) error {
	_, err := fmt.Fprintf(n.W, "open %s\n", webURL)
	return err
}

// Adapter turns articles into rows. Navigation and thumbnails are
// injected so nothing here depends on a global handle.
type Adapter struct {
	nav    Navigator
	thumbs ThumbnailLoader
	logger *slog.Logger
}

func NewAdapter(nav Navigator, thumbs ThumbnailLoader, logger *slog.Logger) *Adapter {
	if thumbs == nil {
		thumbs = NopThumbnails{}
	}
	return &Adapter{nav: nav, thumbs: thumbs, logger: logger}
}

// Bind builds the row for a. A timestamp that cannot be formatted leaves
// Date empty instead of showing a made-up date.
func (a *Adapter) Bind(article models.Article) Row {
	author, _ := article.Author()
	row := Row{
		Section:   article.Category(),
		Headline:  article.Headline(),
		Author:    author,
		Published: article.PublishedAt(),
		Thumbnail: article.Thumbnail(),
		WebURL:    article.WebURL(),
	}

	date, err := FormatDate(article.PublishedAt())
	if err != nil {
		a.logger.Warn("unformattable publication date", "web_url", article.WebURL(), "error", err)
	} else {
		row.Date = date
	}

	if row.Thumbnail != "" {
		a.thumbs.Load(row.Thumbnail)
	}
	return row
}

// Rows binds every article, keeping order.
func (a *Adapter) Rows(articles []models.Article) []Row {
	rows := make([]Row, 0, len(articles))
	for _, art := range articles {
		rows = append(rows, a.Bind(art))
	}
	return rows
}

// Select hands the link of rows[i] to the navigator.
func (a *Adapter) Select(rows []Row, i int) error {
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("no article at position %d (have %d)", i+1, len(rows))
	}
	if a.nav == nil {
		return errors.New("no navigator configured")
	}
	return a.nav.Open(rows[i].WebURL)
}

// Classify picks the view state for the outcome of a load.
func Classify(articles []models.Article, err error) models.State {
	switch {
	case errors.Is(err, feed.ErrOffline):
		return models.StateOffline
	case errors.Is(err, feed.ErrSuperseded):
		return models.StateLoading
	case err != nil:
		return models.StateFailed
	case len(articles) == 0:
		return models.StateEmpty
	default:
		return models.StateReady
	}
}
