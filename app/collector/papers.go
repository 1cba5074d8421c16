package collector

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
	"github.com/haruq/dailybrief/app/extract"
)

const defaultArxivAPI = "http://export.arxiv.org/api/query"

// PapersAdapter runs the configured topic queries against the arXiv search
// endpoint, newest submissions first, and scrapes each result's abstract
// page for supplementary text before summarization.
type PapersAdapter struct {
	httpClient *http.Client
	endpoint   string
	userAgent  string
	parser     *gofeed.Parser
	config     PapersConfig
	limiter    *rate.Limiter
}

func NewPapersAdapter(httpClient *http.Client, userAgent string, config PapersConfig) *PapersAdapter {
	return &PapersAdapter{
		httpClient: httpClient,
		endpoint:   defaultArxivAPI,
		userAgent:  userAgent,
		parser:     gofeed.NewParser(),
		config:     config,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (a *PapersAdapter) Key() string {
	return "paper_summarizer"
}

func (a *PapersAdapter) Kind() digest.SourceKind {
	return digest.KindPaper
}

func (a *PapersAdapter) Collect(ctx context.Context) ([]digest.Item, error) {
	var items []digest.Item

	for _, query := range a.config.Queries {
		if err := a.limiter.Wait(ctx); err != nil {
			return items, err
		}

		papers, err := a.search(ctx, query)
		if err != nil {
			slog.Error("Paper search failed", "query", query.Query, "error", err)
			continue
		}

		for i := range papers {
			if err := a.limiter.Wait(ctx); err != nil {
				return items, err
			}
			// Best-effort: an empty supplement never blocks the paper.
			if supplement := a.scrapeAbstract(ctx, papers[i].URL); supplement != "" {
				papers[i].Context = []string{supplement}
			}
		}

		items = append(items, papers...)
		slog.Info("Paper query collected", "query", query.Query, "papers", len(papers))
	}

	return items, nil
}

func (a *PapersAdapter) search(ctx context.Context, query SearchQuery) ([]digest.Item, error) {
	params := url.Values{
		"search_query": {query.Query},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
		"max_results":  {fmt.Sprintf("%d", query.MaxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"?"+params.Encode(), nil)
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

	// The search endpoint answers in Atom.
	feed, err := a.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	items := make([]digest.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, a.normalize(entry, query.Name))
	}
	return items, nil
}

func (a *PapersAdapter) normalize(entry *gofeed.Item, category string) digest.Item {
	authors := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		if author != nil && author.Name != "" {
			authors = append(authors, author.Name)
		}
	}

	published := entry.Published
	if entry.PublishedParsed != nil {
		published = entry.PublishedParsed.Format("2006-01-02")
	}

	return digest.Item{
		Kind:     digest.KindPaper,
		ID:       entry.Link,
		Title:    extract.CollapseWhitespace(entry.Title),
		URL:      entry.Link,
		Metrics:  map[string]int{},
		BodyText: extract.CollapseWhitespace(entry.Description),
		Fields: map[string]string{
			"authors":   strings.Join(authors, ", "),
			"published": published,
			"category":  category,
			"pdf":       strings.Replace(entry.Link, "/abs/", "/pdf/", 1),
		},
	}
}

// scrapeAbstract pulls the abstract block from the paper's landing page,
// returning the empty string on any failure.
func (a *PapersAdapter) scrapeAbstract(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		slog.Warn("Abstract page fetch failed", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	return extract.CollapseWhitespace(doc.Find(".abstract").First().Text())
}

func (a *PapersAdapter) BuildPrompt(item digest.Item) (string, string) {
	supplement := ""
	if len(item.Context) > 0 {
		supplement = strings.Join(item.Context, "\n")
	}

	content := fmt.Sprintf(
		"Paper title: %s\nAuthors: %s\n\nAbstract:\n%s\n\nAdditional information:\n%s\n\nSummary:",
		item.Title, item.Field("authors"), item.BodyText, supplement)

	instructions := "You are an AI assistant that summarizes academic papers.\n" +
		"Read the paper's abstract and additional information below and cover:\n\n" +
		"1. The background and goals of the research\n" +
		"2. The proposed method or approach\n" +
		"3. The main findings or results\n" +
		"4. Practical significance and future potential\n\n" +
		"Keep the summary technically accurate and easy to follow."

	return content, instructions
}
