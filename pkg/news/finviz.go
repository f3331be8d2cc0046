// Package news fetches recent headlines for a ticker. The sentiment agent
// scores them; the count is bounded by the backtest's news-article setting.
package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Headline is one scraped news item.
type Headline struct {
	Title  string
	Source string
	URL    string
}

// Fetcher retrieves headlines for a ticker. Implementations must treat a
// failed fetch as an empty result for the caller; sentiment without news is
// neutral, not an error.
type Fetcher interface {
	Headlines(ctx context.Context, ticker string, limit int) ([]Headline, error)
}

// FinvizFetcher scrapes the Finviz quote page's news table.
type FinvizFetcher struct {
	client *http.Client
}

// NewFinvizFetcher builds a fetcher. A nil client gets a 30-second default.
func NewFinvizFetcher(client *http.Client) *FinvizFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &FinvizFetcher{client: client}
}

// Headlines fetches up to limit news items for the ticker.
func (f *FinvizFetcher) Headlines(ctx context.Context, ticker string, limit int) ([]Headline, error) {
	url := fmt.Sprintf("https://finviz.com/quote.ashx?t=%s", ticker)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building finviz request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching finviz: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finviz returned %s", resp.Status)
	}
	return ParseHeadlines(resp.Body, limit)
}

// ParseHeadlines extracts headlines from a Finviz quote page.
func ParseHeadlines(r io.Reader, limit int) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing finviz HTML: %w", err)
	}

	var headlines []Headline
	doc.Find("table.fullview-news-outer tr").Each(func(i int, s *goquery.Selection) {
		if limit > 0 && len(headlines) >= limit {
			return
		}
		link := s.Find("td").Last().Find("a")
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}
		url, _ := link.Attr("href")
		headlines = append(headlines, Headline{
			Title:  title,
			Source: strings.TrimSpace(s.Find("td").Last().Find("span").Text()),
			URL:    url,
		})
	})
	return headlines, nil
}
