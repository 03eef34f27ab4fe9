package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
	"github.com/spigell/jobrank/internal/utils"
)

const (
	NameDuckDuckGo = "duckduckgo"
	duckDuckGoURL  = "https://html.duckduckgo.com/html/"
	browserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DuckDuckGo scrapes the keyless HTML endpoint of DuckDuckGo. It is the last
// resort of the fallback chain.
type DuckDuckGo struct {
	c        *client
	endpoint string
}

func NewDuckDuckGo(opts Options) *DuckDuckGo {
	endpoint := duckDuckGoURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = browserAgent
	}
	return &DuckDuckGo{
		c:        newClient(NameDuckDuckGo, opts, rate.Every(2*time.Second), 1),
		endpoint: endpoint,
	}
}

func (d *DuckDuckGo) Name() string { return NameDuckDuckGo }

func (d *DuckDuckGo) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	params := url.Values{}
	params.Set("q", webSearchQuery(q))

	body, err := d.c.get(ctx, d.endpoint, params, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, aggregator.Malformed(NameDuckDuckGo, fmt.Errorf("parse html: %w", err))
	}

	var results []searchResult
	doc.Find(".result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		anchor := s.Find(".result__title a").First()
		href, _ := anchor.Attr("href")
		results = append(results, searchResult{
			Title:   strings.TrimSpace(anchor.Text()),
			Link:    unwrapRedirect(href),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
		})
	})

	d.c.logger.Debug("parsed search results",
		zap.Int("count", len(results)),
		zap.String("page", utils.TruncateForLog(string(body), 120)),
	)

	return listingsToPostings(NameDuckDuckGo, extract.ForSkills(q.Skills), results, q.Limit), nil
}

// unwrapRedirect resolves DuckDuckGo's "/l/?uddg=<target>" redirect links.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
