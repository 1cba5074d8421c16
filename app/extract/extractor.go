package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	// SummaryBudget caps text fed into summarization prompts.
	SummaryBudget = 5000
	// ChatBudget caps per-link text injected into chat prompts.
	ChatBudget = 1000

	ellipsis = "..."

	// Pages larger than this are cut off at the transport; extraction budgets
	// are far smaller anyway.
	maxBodyBytes = 2 << 20

	// Unavailable is the user-facing placeholder for article text that could
	// not be retrieved; it flows into prompts and rendered output as-is.
	Unavailable = "Could not retrieve the article content."
)

// Extractor produces best-effort plain text from feed entries and web pages.
// It never fails its caller: every path degrades to an empty string or the
// Unavailable placeholder.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewExtractor(httpClient *http.Client, userAgent string) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Truncate cuts text at exactly budget characters, appending an ellipsis
// marker when a cut happened. Text at or under the budget is unchanged.
func Truncate(text string, budget int) string {
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget]) + ellipsis
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// FromEntry extracts article text for a feed entry. Order matters: the
// structured entry content wins, then the entry summary, then a live page
// fetch.
func (e *Extractor) FromEntry(ctx context.Context, entry *gofeed.Item) string {
	if entry.Content != "" {
		if text := htmlFragmentText(entry.Content); text != "" {
			return Truncate(text, SummaryBudget)
		}
	}

	if entry.Description != "" {
		if text := htmlFragmentText(entry.Description); text != "" {
			return Truncate(text, SummaryBudget)
		}
	}

	return e.FetchArticle(ctx, entry.Link)
}

// FetchArticle fetches a page and extracts article text under the
// summarization budget. Failures degrade to the Unavailable placeholder.
func (e *Extractor) FetchArticle(ctx context.Context, pageURL string) string {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		slog.Warn("Article fetch failed", "url", pageURL, "error", err)
		return Unavailable
	}

	// Readability finds the article region on most pages.
	if parsed, err := url.Parse(pageURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(body), parsed); err == nil {
			if text := CollapseWhitespace(article.TextContent); text != "" {
				return Truncate(text, SummaryBudget)
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return Unavailable
	}

	if region := doc.Find("article, .post-content, .entry-content").First(); region.Length() > 0 {
		region.Find("script, style, iframe, noscript").Remove()
		if text := CollapseWhitespace(region.Text()); text != "" {
			return Truncate(text, SummaryBudget)
		}
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		body.Find("script, style, iframe, nav, header, footer").Remove()
		if text := CollapseWhitespace(body.Text()); text != "" {
			return Truncate(text, SummaryBudget)
		}
	}

	return Unavailable
}

// FetchPage is the chat-enrichment variant: strip chrome, select the main
// region, collapse whitespace, truncate to the chat budget. Unlike
// FetchArticle it reports failure so the caller can skip the link.
func (e *Extractor) FetchPage(ctx context.Context, pageURL string) (string, error) {
	body, err := e.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find("script, style, nav, header, footer").Remove()

	region := doc.Find("article").First()
	if region.Length() == 0 {
		region = doc.Find("main").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body").First()
	}
	if region.Length() == 0 {
		return "", fmt.Errorf("no content region in %s", pageURL)
	}

	text := CollapseWhitespace(region.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in %s", pageURL)
	}

	return Truncate(text, ChatBudget), nil
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(data), nil
}

func htmlFragmentText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	return CollapseWhitespace(doc.Text())
}
