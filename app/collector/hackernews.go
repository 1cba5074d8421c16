package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
)

const defaultHackerNewsAPI = "https://hacker-news.firebaseio.com/v0"

// HackerNewsAdapter fetches the provider-ordered top-story index and then
// each story's detail. Only "story"-typed items are kept; items without an
// external URL link to their own discussion page.
type HackerNewsAdapter struct {
	httpClient *http.Client
	baseURL    string
	config     HackerNewsConfig
	limiter    *rate.Limiter
}

func NewHackerNewsAdapter(httpClient *http.Client, config HackerNewsConfig) *HackerNewsAdapter {
	return &HackerNewsAdapter{
		httpClient: httpClient,
		baseURL:    defaultHackerNewsAPI,
		config:     config,
		// 100ms between detail fetches keeps the API happy.
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
	}
}

func (a *HackerNewsAdapter) Key() string {
	return "hacker_news"
}

func (a *HackerNewsAdapter) Kind() digest.SourceKind {
	return digest.KindNewsStory
}

type hackerNewsItem struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Score       int    `json:"score"`
	By          string `json:"by"`
	Descendants int    `json:"descendants"`
	Text        string `json:"text"`
}

func (a *HackerNewsAdapter) Collect(ctx context.Context) ([]digest.Item, error) {
	var ids []int64
	if err := a.getJSON(ctx, a.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("failed to fetch top stories: %w", err)
	}

	// The cap bounds detail fetches, not accepted stories.
	if len(ids) > a.config.StoryLimit {
		ids = ids[:a.config.StoryLimit]
	}

	var items []digest.Item
	for _, id := range ids {
		if err := a.limiter.Wait(ctx); err != nil {
			return items, err
		}

		var story hackerNewsItem
		if err := a.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", a.baseURL, id), &story); err != nil {
			slog.Warn("Failed to fetch story detail", "id", id, "error", err)
			continue
		}

		if story.Type != "story" {
			continue
		}

		discussion := fmt.Sprintf("https://news.ycombinator.com/item?id=%d", id)
		storyURL := story.URL
		if storyURL == "" {
			storyURL = discussion
		}

		author := story.By
		if author == "" {
			author = "anonymous"
		}

		items = append(items, digest.Item{
			Kind:  digest.KindNewsStory,
			ID:    fmt.Sprintf("%d", id),
			Title: story.Title,
			URL:   storyURL,
			Metrics: map[string]int{
				"score":    story.Score,
				"comments": story.Descendants,
			},
			BodyText: story.Text,
			Fields: map[string]string{
				"author":     author,
				"discussion": discussion,
			},
		})
	}

	return items, nil
}

func (a *HackerNewsAdapter) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
