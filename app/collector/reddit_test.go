package collector

import (
	"context"
	"strings"
	"testing"

	"github.com/haruq/dailybrief/app/digest"
)

type fakeRedditAPI struct {
	posts    map[string][]RedditPost
	comments map[string][]RedditComment
}

func (f *fakeRedditAPI) HotPosts(_ context.Context, subreddit string, _ int) ([]RedditPost, error) {
	return f.posts[subreddit], nil
}

func (f *fakeRedditAPI) TopComments(_ context.Context, postID string, _ int) ([]RedditComment, error) {
	return f.comments[postID], nil
}

func acceptablePost(id string) RedditPost {
	return RedditPost{
		ID:          id,
		Title:       "A post about something",
		Author:      "regular_user",
		URL:         "https://example.com/" + id,
		Permalink:   "/r/test/comments/" + id,
		Ups:         100,
		UpvoteRatio: 0.9,
	}
}

func TestClassifyPost_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		post     RedditPost
		expected string
	}{
		{"image hint", RedditPost{PostHint: "image"}, postTypeImage},
		{"image hint beats video flag", RedditPost{PostHint: "image", IsVideo: true}, postTypeImage},
		{"gallery beats video", RedditPost{IsGallery: true, IsVideo: true}, postTypeGallery},
		{"video", RedditPost{IsVideo: true}, postTypeVideo},
		{"poll", RedditPost{HasPollData: true}, postTypePoll},
		{"crosspost", RedditPost{HasCrosspost: true}, postTypeCrosspost},
		{"self text", RedditPost{IsSelf: true}, postTypeText},
		{"plain link", RedditPost{}, postTypeLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyPost(tt.post); got != tt.expected {
				t.Errorf("classifyPost = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestVideoURL(t *testing.T) {
	media := &RedditMedia{RedditVideo: &RedditVideo{FallbackURL: "https://v.redd.it/a/fallback"}}
	secure := &RedditMedia{RedditVideo: &RedditVideo{FallbackURL: "https://v.redd.it/b/fallback"}}

	if got := videoURL(RedditPost{Media: media}); got != "https://v.redd.it/a/fallback" {
		t.Errorf("Media field should resolve first, got %q", got)
	}
	if got := videoURL(RedditPost{SecureMedia: secure}); got != "https://v.redd.it/b/fallback" {
		t.Errorf("Secure media should resolve when media is absent, got %q", got)
	}
	if got := videoURL(RedditPost{Media: media, SecureMedia: secure}); got != "https://v.redd.it/a/fallback" {
		t.Errorf("Media should win over secure media, got %q", got)
	}
	if got := videoURL(RedditPost{}); got != "" {
		t.Errorf("No media should yield empty URL, got %q", got)
	}
}

func TestRedditNormalize_Exclusions(t *testing.T) {
	adapter := NewRedditAdapter(&fakeRedditAPI{}, RedditConfig{PostLimit: 10, CommentLimit: 3})

	tests := []struct {
		name   string
		mutate func(*RedditPost)
	}{
		{"automoderator", func(p *RedditPost) { p.Author = automoderatorName }},
		{"megathread lowercase", func(p *RedditPost) { p.Title = "weekly megathread" }},
		{"megathread mixed case", func(p *RedditPost) { p.Title = "Weekly MegaThread: questions" }},
		{"low upvote ratio", func(p *RedditPost) { p.UpvoteRatio = 0.69 }},
		{"gallery", func(p *RedditPost) { p.IsGallery = true }},
		{"poll", func(p *RedditPost) { p.HasPollData = true }},
		{"crosspost", func(p *RedditPost) { p.HasCrosspost = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := acceptablePost("x1")
			tt.mutate(&post)
			if _, ok := adapter.normalize(post); ok {
				t.Error("Post should be excluded")
			}
		})
	}

	// Boundary: exactly 0.7 is accepted.
	post := acceptablePost("x2")
	post.UpvoteRatio = 0.7
	if _, ok := adapter.normalize(post); !ok {
		t.Error("Upvote ratio of exactly 0.7 should be accepted")
	}
}

func TestRedditNormalize_Media(t *testing.T) {
	adapter := NewRedditAdapter(&fakeRedditAPI{}, RedditConfig{PostLimit: 10, CommentLimit: 3})

	imagePost := acceptablePost("img")
	imagePost.PostHint = "image"
	item, ok := adapter.normalize(imagePost)
	if !ok {
		t.Fatal("Image post should be accepted")
	}
	if item.Media != digest.MediaImage {
		t.Errorf("Expected image media, got %q", item.Media)
	}

	videoPost := acceptablePost("vid")
	videoPost.IsVideo = true
	videoPost.Media = &RedditMedia{RedditVideo: &RedditVideo{FallbackURL: "https://v.redd.it/clip"}}
	item, ok = adapter.normalize(videoPost)
	if !ok {
		t.Fatal("Video post should be accepted")
	}
	if item.Media != digest.MediaVideo {
		t.Errorf("Expected video media, got %q", item.Media)
	}
	if item.URL != "https://v.redd.it/clip" {
		t.Errorf("Video post URL should be the fallback URL, got %q", item.URL)
	}

	textPost := acceptablePost("txt")
	textPost.IsSelf = true
	textPost.SelfText = "post body"
	item, ok = adapter.normalize(textPost)
	if !ok {
		t.Fatal("Text post should be accepted")
	}
	if item.Media != digest.MediaNone {
		t.Errorf("Text post should carry no media, got %q", item.Media)
	}
	if item.BodyText != "post body" {
		t.Errorf("Self text should become the body, got %q", item.BodyText)
	}
}

func TestRedditNormalize_Permalink(t *testing.T) {
	adapter := NewRedditAdapter(&fakeRedditAPI{}, RedditConfig{PostLimit: 10})

	item, ok := adapter.normalize(acceptablePost("p1"))
	if !ok {
		t.Fatal("Post should be accepted")
	}
	if item.Field("permalink") != "https://www.reddit.com/r/test/comments/p1" {
		t.Errorf("Permalink should be absolute, got %q", item.Field("permalink"))
	}
	if item.Metrics["upvotes"] != 100 {
		t.Errorf("Expected 100 upvotes, got %d", item.Metrics["upvotes"])
	}
}

func TestRedditCollect_CapAndComments(t *testing.T) {
	api := &fakeRedditAPI{
		posts: map[string][]RedditPost{
			"test": {
				func() RedditPost { p := acceptablePost("a"); p.Author = automoderatorName; return p }(),
				acceptablePost("b"),
				acceptablePost("c"),
				acceptablePost("d"), // over the cap, never reached
			},
		},
		comments: map[string][]RedditComment{
			"b": {{Text: "great point", Ups: 12}},
		},
	}

	adapter := NewRedditAdapter(api, RedditConfig{
		Subreddits:   []string{"test"},
		PostLimit:    2,
		CommentLimit: 3,
	})

	items, err := adapter.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected the first 2 accepted posts, got %d", len(items))
	}
	if items[0].ID != "b" || items[1].ID != "c" {
		t.Errorf("Expected posts b and c in provider order, got %s and %s", items[0].ID, items[1].ID)
	}
	if len(items[0].Context) != 1 || items[0].Context[0] != "12 upvotes: great point" {
		t.Errorf("Comment line mismatch: %v", items[0].Context)
	}
}

func TestRedditBuildPrompt(t *testing.T) {
	adapter := NewRedditAdapter(&fakeRedditAPI{}, RedditConfig{})

	item := digest.Item{
		Title:    "A post title",
		BodyText: "the body",
		Context:  []string{"5 upvotes: first", "2 upvotes: second"},
	}

	content, instructions := adapter.BuildPrompt(item)

	if !strings.Contains(content, "1. Explain what this post is about.") {
		t.Errorf("Content should carry the two fixed questions, got %q", content)
	}
	if !strings.Contains(instructions, "Title\n'''\nA post title\n'''") {
		t.Errorf("Instructions missing title section:\n%s", instructions)
	}
	if !strings.Contains(instructions, "Body\n'''\nthe body\n'''") {
		t.Errorf("Instructions missing body section:\n%s", instructions)
	}
	if !strings.Contains(instructions, "Comments\n'''\n5 upvotes: first\n2 upvotes: second\n'''") {
		t.Errorf("Instructions missing comments section:\n%s", instructions)
	}

	// Without a body the body clause and section disappear.
	item.BodyText = ""
	_, instructions = adapter.BuildPrompt(item)
	if strings.Contains(instructions, "Body\n'''") {
		t.Errorf("Body section should be omitted for link posts:\n%s", instructions)
	}
	if strings.Contains(instructions, " its body,") {
		t.Errorf("Body clause should be omitted for link posts:\n%s", instructions)
	}
}
