package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
	"github.com/haruq/dailybrief/app/extract"
)

// TechFeedAdapter parses the configured RSS/Atom feeds and extracts article
// text for the newest entries of each.
type TechFeedAdapter struct {
	parser    *gofeed.Parser
	extractor *extract.Extractor
	config    TechFeedConfig
	limiter   *rate.Limiter
}

func NewTechFeedAdapter(extractor *extract.Extractor, userAgent string, config TechFeedConfig) *TechFeedAdapter {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &TechFeedAdapter{
		parser:    parser,
		extractor: extractor,
		config:    config,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (a *TechFeedAdapter) Key() string {
	return "tech_feed"
}

func (a *TechFeedAdapter) Kind() digest.SourceKind {
	return digest.KindFeedArticle
}

func (a *TechFeedAdapter) Collect(ctx context.Context) ([]digest.Item, error) {
	var items []digest.Item

	for _, feedSource := range a.config.Feeds {
		if err := a.limiter.Wait(ctx); err != nil {
			return items, err
		}

		feed, err := a.parser.ParseURLWithContext(feedSource.URL, ctx)
		if err != nil {
			slog.Error("Failed to parse feed", "feed", feedSource.Name, "url", feedSource.URL, "error", err)
			continue
		}

		entries := feed.Items
		if len(entries) > a.config.EntryLimit {
			entries = entries[:a.config.EntryLimit]
		}

		for _, entry := range entries {
			if err := a.limiter.Wait(ctx); err != nil {
				return items, err
			}
			items = append(items, a.normalize(ctx, feedSource, entry))
		}

		slog.Info("Feed collected", "feed", feedSource.Name, "entries", len(entries))
	}

	return items, nil
}

func (a *TechFeedAdapter) normalize(ctx context.Context, feedSource FeedSource, entry *gofeed.Item) digest.Item {
	published := entry.Published
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.Format("2006-01-02")
	}

	id := entry.GUID
	if id == "" {
		id = entry.Link
	}

	return digest.Item{
		Kind:     digest.KindFeedArticle,
		ID:       id,
		Title:    entry.Title,
		URL:      entry.Link,
		Metrics:  map[string]int{},
		BodyText: a.extractor.FromEntry(ctx, entry),
		Fields: map[string]string{
			"source":    feedSource.Name,
			"published": published,
		},
	}
}

func (a *TechFeedAdapter) BuildPrompt(item digest.Item) (string, string) {
	content := fmt.Sprintf(
		"Summarize the following article.\n\nTitle: %s\nURL: %s\n\nContent:\n%s\n\nSummary:",
		item.Title, item.URL, item.BodyText)

	instructions := "You are an AI assistant that summarizes technology, programming, and AI articles.\n" +
		"Summarize the given article concisely and capture its key points.\n" +
		"Write in paragraphs without headings, at most three paragraphs, and keep technical details intact."

	return content, instructions
}
