package chat

import (
	"regexp"
	"strings"
)

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://[^\s)]+`)
)

// ExtractLinks pulls candidate URLs out of Markdown text in two passes:
// [label](url) pairs first (skipping inline media placeholders), then bare
// http(s) tokens not already captured as a Markdown link target. Order is
// preserved and duplicates are dropped.
func ExtractLinks(text string) []string {
	seen := make(map[string]bool)
	var links []string

	add := func(link string) {
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	}

	for _, match := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		label, target := match[1], match[2]
		if strings.HasPrefix(label, "Image") || strings.HasPrefix(label, "Video") {
			continue
		}
		add(target)
	}

	for _, loc := range bareURLPattern.FindAllStringIndex(text, -1) {
		// A token directly after '(' or '[' is part of Markdown link syntax
		// and was handled by the first pass.
		if loc[0] > 0 {
			switch text[loc[0]-1] {
			case '(', '[':
				continue
			}
		}
		add(text[loc[0]:loc[1]])
	}

	return links
}
