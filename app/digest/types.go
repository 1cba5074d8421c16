package digest

// Normalized item types shared by all collector adapters.

type SourceKind string

const (
	KindLinkPost    SourceKind = "link_post"
	KindNewsStory   SourceKind = "news_story"
	KindRepository  SourceKind = "repository"
	KindPaper       SourceKind = "paper"
	KindFeedArticle SourceKind = "feed_article"
)

type MediaKind string

const (
	MediaNone  MediaKind = "none"
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// TitlePlaceholder is substituted when a provider returns an item without a
// title; rendered digests never contain an empty heading.
const TitlePlaceholder = "No Title"

// Item is the unit normalized from any source. Once rendered it is never
// mutated; a re-run builds fresh items.
type Item struct {
	Kind     SourceKind
	ID       string
	Title    string
	URL      string // canonical link, may be empty for self-contained text items
	Metrics  map[string]int
	BodyText string   // post body, abstract, or article text
	Context  []string // short auxiliary fragments (e.g. top comments) attached before summarization
	Summary  string   // set exactly once before rendering
	Media    MediaKind

	// Fields carries source-specific display strings the renderer needs:
	// "permalink", "author", "discussion", "language", "authors",
	// "published", "category", "pdf", "source".
	Fields map[string]string
}

// Field returns a display field or the empty string.
func (i Item) Field(key string) string {
	if i.Fields == nil {
		return ""
	}
	return i.Fields[key]
}

// DisplayTitle applies the never-empty-title invariant.
func (i Item) DisplayTitle() string {
	if i.Title == "" {
		return TitlePlaceholder
	}
	return i.Title
}
