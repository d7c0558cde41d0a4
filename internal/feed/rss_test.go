package feed_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raffaelramalhorosa/techfeed/internal/feed"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
  <title>Technology</title>
  <link>https://example.com/technology</link>
  <description>Latest technology news</description>
  <item>
    <title>Chip makers race ahead</title>
    <link>https://example.com/chips</link>
    <category>Technology</category>
    <pubDate>Mon, 15 Mar 2021 10:00:00 GMT</pubDate>
    <dc:creator>Alex Hern</dc:creator>
    <media:content width="140" url="https://img.example.com/chips-140.jpg"/>
  </item>
  <item>
    <title>Robots, again</title>
    <link>https://example.com/robots</link>
    <category>Science</category>
    <pubDate>Sun, 14 Mar 2021 11:30:00 +0200</pubDate>
    <enclosure url="https://img.example.com/robots.png" type="image/png" length="1024"/>
  </item>
</channel>
</rss>`

func TestParseRSS(t *testing.T) {
	articles, err := feed.ParseRSS(rssFeed)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Chip makers race ahead", first.Headline())
	assert.Equal(t, "https://example.com/chips", first.WebURL())
	assert.Equal(t, "Technology", first.Category())
	assert.Equal(t, "2021-03-15T10:00:00Z", first.PublishedAt())
	assert.Equal(t, "https://img.example.com/chips-140.jpg", first.Thumbnail())
	author, ok := first.Author()
	assert.True(t, ok)
	assert.Equal(t, "Alex Hern", author)

	second := articles[1]
	assert.Equal(t, "2021-03-14T09:30:00Z", second.PublishedAt(), "timestamps are normalized to UTC")
	assert.Equal(t, "https://img.example.com/robots.png", second.Thumbnail())
	_, ok = second.Author()
	assert.False(t, ok)
}

func TestParseRSS_MissingCategory(t *testing.T) {
	body := `<rss version="2.0"><channel><title>t</title>
	  <item><title>x</title><link>https://example.com/x</link><pubDate>Mon, 15 Mar 2021 10:00:00 GMT</pubDate></item>
	</channel></rss>`

	_, err := feed.ParseRSS(body)
	var missing *feed.MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "category", missing.Path)
}

func TestParseRSS_EmptyAndMalformed(t *testing.T) {
	_, err := feed.ParseRSS("  ")
	assert.ErrorIs(t, err, feed.ErrEmptyInput)

	_, err = feed.ParseRSS("this is not a feed")
	assert.ErrorIs(t, err, feed.ErrMalformedStructure)
}

func TestParseRSS_HeadlineKeptAsIs(t *testing.T) {
	body := `<rss version="2.0"><channel><title>t</title>
	  <item><title>Chips,  robots	and   AI</title><link>https://example.com/x</link>
	  <category>Technology</category><pubDate>Mon, 15 Mar 2021 10:00:00 GMT</pubDate></item>
	</channel></rss>`

	articles, err := feed.ParseRSS(body)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "Chips,  robots\tand   AI", articles[0].Headline())
}

func TestParseRSS_BlankTitleIsMissing(t *testing.T) {
	body := `<rss version="2.0"><channel><title>t</title>
	  <item><title>   </title><link>https://example.com/x</link>
	  <category>Technology</category><pubDate>Mon, 15 Mar 2021 10:00:00 GMT</pubDate></item>
	</channel></rss>`

	_, err := feed.ParseRSS(body)
	var missing *feed.MissingFieldError
	require.True(t, errors.As(err, &missing), "got %v", err)
	assert.Equal(t, "title", missing.Path)
}
