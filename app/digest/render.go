package digest

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Renderer turns finalized items into the per-source Markdown digest.
// Downstream consumers (the viewer and the chat enrichment path) parse the
// output by structural convention, so field order and labels are fixed.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Run(kind SourceKind, items []Item) string {
	switch kind {
	case KindLinkPost:
		return r.renderLinkPosts(items)
	case KindNewsStory:
		return r.renderNewsStories(items)
	case KindRepository:
		return r.renderRepositories(items)
	case KindPaper:
		return r.renderPapers(items)
	case KindFeedArticle:
		return r.renderFeedArticles(items)
	default:
		return ""
	}
}

// JoinBlocks joins rendered blocks with a horizontal-rule separator and no
// trailing separator.
func JoinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n---\n")
}

func (r *Renderer) renderLinkPosts(items []Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		var media string
		switch {
		case item.Media == MediaImage:
			media = fmt.Sprintf("![Image](%s)", item.URL)
		case item.Media == MediaVideo && item.URL != "":
			media = fmt.Sprintf(`<video src="%s" controls controls style="width: 100%%; height: auto; max-height: 500px;"></video>`, item.URL)
		}

		var b strings.Builder
		b.WriteString(fmt.Sprintf("\n## %s\n\n", item.DisplayTitle()))
		b.WriteString(fmt.Sprintf("**Upvotes**: %d\n\n", item.Metrics["upvotes"]))
		b.WriteString(media + "\n\n")
		b.WriteString(fmt.Sprintf("[View on Reddit](%s)\n\n", item.Field("permalink")))
		b.WriteString(item.Summary + "\n")
		blocks = append(blocks, b.String())
	}
	return JoinBlocks(blocks)
}

func (r *Renderer) renderNewsStories(items []Item) string {
	var b strings.Builder
	b.WriteString("# Hacker News Top Stories\n\n")
	for _, item := range items {
		b.WriteString(fmt.Sprintf("## %s\n\n", item.DisplayTitle()))
		b.WriteString(fmt.Sprintf("**Score**: %d | ", item.Metrics["score"]))
		b.WriteString(fmt.Sprintf("**Comments**: %d | ", item.Metrics["comments"]))
		b.WriteString(fmt.Sprintf("**Author**: %s\n\n", item.Field("author")))
		b.WriteString(fmt.Sprintf("[Read Article](%s) | ", item.URL))
		b.WriteString(fmt.Sprintf("[Discussion](%s)\n\n", item.Field("discussion")))
		b.WriteString("---\n\n")
	}
	return b.String()
}

func (r *Renderer) renderRepositories(items []Item) string {
	// Group by language label, preserving first-seen order.
	var languages []string
	byLanguage := make(map[string][]Item)
	for _, item := range items {
		lang := item.Field("language")
		if _, ok := byLanguage[lang]; !ok {
			languages = append(languages, lang)
		}
		byLanguage[lang] = append(byLanguage[lang], item)
	}

	titleCaser := cases.Title(language.English)

	var b strings.Builder
	b.WriteString("# GitHub Trending Repositories\n\n")
	for _, lang := range languages {
		b.WriteString(fmt.Sprintf("## %s\n\n", titleCaser.String(strings.ToLower(lang))))
		for _, item := range byLanguage[lang] {
			description := item.BodyText
			if description == "" {
				description = "No description"
			}
			b.WriteString(fmt.Sprintf("### [%s](%s)\n\n", item.DisplayTitle(), item.URL))
			b.WriteString(description + "\n\n")
			b.WriteString(fmt.Sprintf("⭐ Stars: %d | 🍴 Forks: %d\n\n", item.Metrics["stars"], item.Metrics["forks"]))
			b.WriteString("---\n\n")
		}
	}
	return b.String()
}

func (r *Renderer) renderPapers(items []Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("## %s\n\n", item.DisplayTitle()))
		b.WriteString(fmt.Sprintf("**Authors**: %s  \n", item.Field("authors")))
		b.WriteString(fmt.Sprintf("**Published**: %s  \n", item.Field("published")))
		b.WriteString(fmt.Sprintf("**Category**: %s  \n", item.Field("category")))
		b.WriteString(fmt.Sprintf("**arXiv**: [%s](%s)  \n", item.URL, item.URL))
		b.WriteString(fmt.Sprintf("**PDF**: [%s](%s)  \n\n", item.Field("pdf"), item.Field("pdf")))
		b.WriteString(fmt.Sprintf("### Summary\n\n%s\n\n", item.Summary))
		b.WriteString("---\n\n")
		blocks = append(blocks, b.String())
	}
	return "# Latest Research Papers\n\n" + strings.Join(blocks, "\n")
}

func (r *Renderer) renderFeedArticles(items []Item) string {
	blocks := make([]string, 0, len(items))
	for _, item := range items {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("## %s\n\n", item.DisplayTitle()))
		b.WriteString(fmt.Sprintf("**Source**: %s  \n", item.Field("source")))
		b.WriteString(fmt.Sprintf("**Published**: %s  \n", item.Field("published")))
		b.WriteString(fmt.Sprintf("**URL**: [%s](%s)  \n\n", item.URL, item.URL))
		b.WriteString(item.Summary + "\n\n")
		b.WriteString("---\n\n")
		blocks = append(blocks, b.String())
	}
	return "# Technology Blog Updates\n\n" + strings.Join(blocks, "\n")
}
