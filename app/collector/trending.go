package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
)

const defaultTrendingBase = "https://github.com"

// TrendingAdapter scrapes the daily trending page for each configured
// programming language.
type TrendingAdapter struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	config     TrendingConfig
	limiter    *rate.Limiter
}

func NewTrendingAdapter(httpClient *http.Client, userAgent string, config TrendingConfig) *TrendingAdapter {
	return &TrendingAdapter{
		httpClient: httpClient,
		baseURL:    defaultTrendingBase,
		userAgent:  userAgent,
		config:     config,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (a *TrendingAdapter) Key() string {
	return "github_trending"
}

func (a *TrendingAdapter) Kind() digest.SourceKind {
	return digest.KindRepository
}

func (a *TrendingAdapter) Collect(ctx context.Context) ([]digest.Item, error) {
	var items []digest.Item

	for _, language := range a.config.Languages {
		if err := a.limiter.Wait(ctx); err != nil {
			return items, err
		}

		repos, err := a.fetchLanguage(ctx, language)
		if err != nil {
			slog.Error("Failed to fetch trending page", "language", language, "error", err)
			continue
		}

		items = append(items, repos...)
		slog.Info("Trending page collected", "language", language, "repositories", len(repos))
	}

	return items, nil
}

func (a *TrendingAdapter) fetchLanguage(ctx context.Context, language string) ([]digest.Item, error) {
	pageURL := fmt.Sprintf("%s/trending/%s?since=daily", a.baseURL, language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	var items []digest.Item
	doc.Find("article.Box-row").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= a.config.PerPage {
			return false
		}
		if item, ok := a.parseRow(row, language); ok {
			items = append(items, item)
		}
		return true
	})

	return items, nil
}

func (a *TrendingAdapter) parseRow(row *goquery.Selection, pageLanguage string) (digest.Item, bool) {
	link := row.Find("h2 a").First()
	href, ok := link.Attr("href")
	if !ok {
		return digest.Item{}, false
	}
	repoPath := strings.Trim(strings.TrimSpace(href), "/")
	if repoPath == "" {
		return digest.Item{}, false
	}

	description := strings.TrimSpace(row.Find("p").First().Text())

	counters := row.Find("a.Link--muted")
	stars := parseCount(counters.Eq(0).Text())
	forks := parseCount(counters.Eq(1).Text())

	label := strings.TrimSpace(row.Find(`span[itemprop="programmingLanguage"]`).Text())
	if label == "" {
		label = pageLanguage
	}

	return digest.Item{
		Kind:     digest.KindRepository,
		ID:       repoPath,
		Title:    repoPath,
		URL:      "https://github.com/" + repoPath,
		Metrics:  map[string]int{"stars": stars, "forks": forks},
		BodyText: description,
		Fields:   map[string]string{"language": label},
	}, true
}

// parseCount turns a display counter like "12,345" into an integer,
// defaulting to zero for anything unparseable.
func parseCount(text string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	value, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return value
}
