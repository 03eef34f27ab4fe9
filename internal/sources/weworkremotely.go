package sources

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/spigell/jobrank/internal/aggregator"
	"github.com/spigell/jobrank/internal/extract"
	"github.com/spigell/jobrank/internal/jobs"
)

const (
	NameWeWorkRemotely = "weworkremotely"
	weWorkRemotelyURL  = "https://weworkremotely.com/remote-jobs.rss"
)

// WeWorkRemotely reads the We Work Remotely RSS feed. Item titles have the
// form "Company: Title".
type WeWorkRemotely struct {
	c        *client
	endpoint string
}

func NewWeWorkRemotely(opts Options) *WeWorkRemotely {
	endpoint := weWorkRemotelyURL
	if opts.BaseURL != "" {
		endpoint = opts.BaseURL
	}
	return &WeWorkRemotely{
		c:        newClient(NameWeWorkRemotely, opts, rate.Every(time.Second), 1),
		endpoint: endpoint,
	}
}

func (w *WeWorkRemotely) Name() string { return NameWeWorkRemotely }

func (w *WeWorkRemotely) Fetch(ctx context.Context, q aggregator.Query) ([]jobs.Posting, error) {
	body, err := w.c.get(ctx, w.endpoint, nil, nil)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, aggregator.Malformed(NameWeWorkRemotely, fmt.Errorf("parse feed: %w", err))
	}

	keywords := extract.QueryKeywords(q.Text)
	vocab := extract.ForSkills(q.Skills)
	postings := make([]jobs.Posting, 0)
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		company, title := splitFeedTitle(item.Title)
		if !extract.MatchesQuery(keywords, title, item.Description) {
			continue
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}
		if id != "" {
			id = path.Base(strings.TrimRight(id, "/"))
		}

		location := "Remote"
		if region := strings.TrimSpace(item.Custom["region"]); region != "" {
			location = region
		}

		var posted string
		if item.PublishedParsed != nil {
			posted = item.PublishedParsed.UTC().Format(time.DateOnly)
		}

		postings = append(postings, finalize(vocab, jobs.Posting{
			ID:          qualifiedID(NameWeWorkRemotely, id),
			Title:       title,
			Company:     company,
			Location:    location,
			Description: item.Description,
			ApplyURL:    item.Link,
			Source:      NameWeWorkRemotely,
			PostedDate:  posted,
			JobType:     strings.TrimSpace(item.Custom["type"]),
		}))
		if q.Limit > 0 && len(postings) >= q.Limit {
			break
		}
	}

	return postings, nil
}

func splitFeedTitle(raw string) (company, title string) {
	raw = strings.TrimSpace(raw)
	if before, after, ok := strings.Cut(raw, ":"); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", raw
}
