package chat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/haruq/dailybrief/app/extract"
	"github.com/haruq/dailybrief/app/summarize"
)

// noHistoryMarker stands in for the history section when the conversation
// has none yet.
const noHistoryMarker = "None"

const promptTemplate = `Answer the user's question about the article below in as much detail as possible, verifying facts with a search engine where available.
Write the answer in Markdown.

[Article]

%s%s

[Chat history]

'''
%s
'''

[New question from the user]

'''
%s
'''

Now, please answer.`

// Answerer handles one chat turn over a rendered digest: it fetches the
// content behind every link found in the digest and the question, injects
// what it got as additional context, and asks the search-augmented backend.
type Answerer struct {
	extractor *extract.Extractor
	gateway   *summarize.Gateway
}

func NewAnswerer(extractor *extract.Extractor, gateway *summarize.Gateway) *Answerer {
	return &Answerer{
		extractor: extractor,
		gateway:   gateway,
	}
}

// Answer never fails; backend problems surface through the gateway's
// degradation policy and unreachable links are simply skipped.
func (a *Answerer) Answer(ctx context.Context, digestMarkdown, message, history string) string {
	links := ExtractLinks(digestMarkdown)
	for _, link := range ExtractLinks(message) {
		if !slices.Contains(links, link) {
			links = append(links, link)
		}
	}

	var contributions []string
	for _, link := range links {
		content, err := a.extractor.FetchPage(ctx, link)
		if err != nil {
			slog.Debug("Link fetch skipped", "url", link, "error", err)
			continue
		}
		contributions = append(contributions, fmt.Sprintf("- Content from %s:\n\n'''%s'''\n", link, content))
	}

	additionalContext := ""
	if len(contributions) > 0 {
		additionalContext = "\n\n[Content of links found in the article or the question] (retrieval may be incomplete)\n\n" +
			strings.Join(contributions, "\n")
	}

	if history == "" {
		history = noHistoryMarker
	}

	prompt := fmt.Sprintf(promptTemplate, digestMarkdown, additionalContext, history, message)

	return a.gateway.Summarize(ctx, prompt, "")
}
