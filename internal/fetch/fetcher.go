package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sujaltv/lazyfeed/internal/storage"
)

// Browser-like user agent; some servers return HTML error pages to bots.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const acceptHeader = "application/rss+xml, application/rdf+xml, application/atom+xml, application/xml, text/xml, */*"

// Fetcher downloads and parses one feed at a time. Callers run one fetch
// per feed concurrently; the fetcher itself holds no per-feed state.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{
		client: client,
		parser: gofeed.NewParser(),
	}
}

// Fetch downloads feed.URL and returns the parsed articles, stamped with the
// feed's id. Every failure mode is returned as an error so one bad feed
// never aborts a batch refresh.
func (f *Fetcher) Fetch(ctx context.Context, feed storage.Feed) ([]storage.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response from feed")
	}

	body = bytes.TrimPrefix(body, []byte{0xEF, 0xBB, 0xBF})

	if looksLikeHTML(body) {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "unknown"
		}
		return nil, fmt.Errorf("server returned HTML instead of feed (type: %s, URL: %s)", contentType, feed.URL)
	}

	parsed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed (%d bytes, URL: %s): %w", len(body), feed.URL, err)
	}

	articles := make([]storage.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}
		// Entries without any identity cannot be de-duplicated.
		if guid == "" {
			continue
		}

		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "(untitled)"
		}

		author := ""
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}

		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}

		articles = append(articles, storage.Article{
			FeedID:    feed.ID,
			GUID:      guid,
			Title:     title,
			URL:       item.Link,
			Author:    author,
			Summary:   item.Description,
			Content:   item.Content,
			Published: published,
		})
	}
	return articles, nil
}

// The first 200 bytes are enough to spot an HTML error page served in
// place of a feed document.
func looksLikeHTML(body []byte) bool {
	head := body
	if len(head) > 200 {
		head = head[:200]
	}
	lower := strings.ToLower(string(head))
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html")
}
