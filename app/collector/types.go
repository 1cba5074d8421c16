package collector

import (
	"context"

	"github.com/haruq/dailybrief/app/digest"
)

// Adapter collects one source into normalized items. Adapters are
// independent, share no state, and must degrade to partial results: a failed
// sub-unit (one post, one paper, one feed entry) is logged and skipped, never
// fatal for the whole collection.
type Adapter interface {
	Key() string
	Kind() digest.SourceKind
	Collect(ctx context.Context) ([]digest.Item, error)
}

// PromptBuilder is implemented by adapters whose items are summarized before
// rendering. It produces the per-item prompt pair fed to the summarizer
// gateway.
type PromptBuilder interface {
	BuildPrompt(item digest.Item) (content, instructions string)
}

// Source configuration types, loaded from per-source YAML files.

type RedditConfig struct {
	Subreddits   []string `yaml:"subreddits"`
	PostLimit    int      `yaml:"post_limit"`
	CommentLimit int      `yaml:"comment_limit"`
}

type HackerNewsConfig struct {
	StoryLimit int `yaml:"story_limit"`
}

type TrendingConfig struct {
	Languages []string `yaml:"languages"`
	PerPage   int      `yaml:"per_page"`
}

type SearchQuery struct {
	Query      string `yaml:"query"`
	Name       string `yaml:"name"`
	MaxResults int    `yaml:"max_results"`
}

type PapersConfig struct {
	Queries []SearchQuery `yaml:"queries"`
}

type FeedSource struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type TechFeedConfig struct {
	Feeds      []FeedSource `yaml:"feeds"`
	EntryLimit int          `yaml:"entry_limit"`
}

// Sources bundles the static per-source configuration. Constructed at
// startup, read-only afterwards.
type Sources struct {
	Reddit     RedditConfig     `yaml:"-"`
	HackerNews HackerNewsConfig `yaml:"-"`
	Trending   TrendingConfig   `yaml:"-"`
	Papers     PapersConfig     `yaml:"-"`
	TechFeed   TechFeedConfig   `yaml:"-"`
}
