package collector

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigLoader reads the per-source YAML files from the sources directory.
// Missing files fall back to built-in defaults so a fresh checkout collects
// something useful out of the box.
type ConfigLoader struct {
	sourcesDir string
}

func NewConfigLoader(sourcesDir string) *ConfigLoader {
	return &ConfigLoader{sourcesDir: sourcesDir}
}

func (l *ConfigLoader) Load() (*Sources, error) {
	sources := defaultSources()

	entries := []struct {
		file string
		into interface{}
	}{
		{"reddit.yml", &sources.Reddit},
		{"hackernews.yml", &sources.HackerNews},
		{"github.yml", &sources.Trending},
		{"papers.yml", &sources.Papers},
		{"techfeed.yml", &sources.TechFeed},
	}

	for _, entry := range entries {
		path := filepath.Join(l.sourcesDir, entry.file)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				slog.Debug("Source config not found, using defaults", "file", entry.file)
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, entry.into); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		slog.Debug("Source configuration loaded", "file", entry.file)
	}

	setDefaults(sources)

	if err := validate(sources); err != nil {
		return nil, err
	}

	return sources, nil
}

func defaultSources() *Sources {
	return &Sources{
		Reddit: RedditConfig{
			Subreddits: []string{"MachineLearning", "Python", "programming", "artificial"},
		},
		Trending: TrendingConfig{
			Languages: []string{"python", "javascript", "typescript", "go", "rust", "cpp", "java"},
		},
		Papers: PapersConfig{
			Queries: []SearchQuery{
				{Query: "cat:cs.AI AND cat:cs.LG", Name: "AI and Machine Learning"},
				{Query: "cat:cs.CL", Name: "Computational Linguistics and NLP"},
			},
		},
		TechFeed: TechFeedConfig{
			Feeds: []FeedSource{
				{Key: "google_ai_blog", Name: "Google AI Blog", URL: "http://googleaiblog.blogspot.com/atom.xml"},
				{Key: "openai_blog", Name: "OpenAI Blog", URL: "https://openai.com/blog/rss.xml"},
				{Key: "huggingface_blog", Name: "Hugging Face Blog", URL: "https://huggingface.co/blog/feed.xml"},
				{Key: "pytorch_blog", Name: "PyTorch Blog", URL: "https://pytorch.org/feed.xml"},
			},
		},
	}
}

func setDefaults(s *Sources) {
	if s.Reddit.PostLimit == 0 {
		s.Reddit.PostLimit = 10
	}
	if s.Reddit.CommentLimit == 0 {
		s.Reddit.CommentLimit = 3
	}
	if s.HackerNews.StoryLimit == 0 {
		s.HackerNews.StoryLimit = 20
	}
	if s.Trending.PerPage == 0 {
		s.Trending.PerPage = 10
	}
	if s.TechFeed.EntryLimit == 0 {
		s.TechFeed.EntryLimit = 5
	}
	for i := range s.Papers.Queries {
		if s.Papers.Queries[i].MaxResults == 0 {
			s.Papers.Queries[i].MaxResults = 5
		}
	}
}

func validate(s *Sources) error {
	nonNegative := map[string]int{
		"reddit post_limit":      s.Reddit.PostLimit,
		"reddit comment_limit":   s.Reddit.CommentLimit,
		"hackernews story_limit": s.HackerNews.StoryLimit,
		"github per_page":        s.Trending.PerPage,
		"techfeed entry_limit":   s.TechFeed.EntryLimit,
	}
	for name, value := range nonNegative {
		if value < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}

	for i, query := range s.Papers.Queries {
		if query.Query == "" {
			return fmt.Errorf("paper query at index %d has no query string", i)
		}
	}

	for i, feed := range s.TechFeed.Feeds {
		if feed.URL == "" {
			return fmt.Errorf("feed at index %d has no URL", i)
		}
		if feed.Name == "" {
			return fmt.Errorf("feed at index %d has no name", i)
		}
	}

	return nil
}
