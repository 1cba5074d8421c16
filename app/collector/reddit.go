package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
)

// Post type labels produced by classifyPost, in precedence order.
const (
	postTypeImage     = "image"
	postTypeGallery   = "gallery"
	postTypeVideo     = "video"
	postTypePoll      = "poll"
	postTypeCrosspost = "crosspost"
	postTypeText      = "text"
	postTypeLink      = "link"
)

const automoderatorName = "AutoModerator"

// RedditPost carries the listing fields the classifier and filters inspect.
// Optional provider fields are modeled explicitly instead of probed ad hoc.
type RedditPost struct {
	ID          string
	Title       string
	Author      string
	URL         string
	Permalink   string
	Thumbnail   string
	PostHint    string
	Ups         int
	UpvoteRatio float64
	SelfText    string

	IsGallery    bool
	IsVideo      bool
	IsSelf       bool
	HasPollData  bool
	HasCrosspost bool

	Media       *RedditMedia
	SecureMedia *RedditMedia
}

type RedditMedia struct {
	RedditVideo *RedditVideo `json:"reddit_video"`
}

type RedditVideo struct {
	FallbackURL string `json:"fallback_url"`
}

type RedditComment struct {
	Text string
	Ups  int
}

// RedditAPI is the provider seam; the HTTP implementation lives below, a
// fake stands in for it in tests.
type RedditAPI interface {
	HotPosts(ctx context.Context, subreddit string, limit int) ([]RedditPost, error)
	TopComments(ctx context.Context, postID string, limit int) ([]RedditComment, error)
}

// RedditAdapter collects hot link posts from the configured communities,
// applying the exclusion rules and the first-N-accepted cap per community.
type RedditAdapter struct {
	api     RedditAPI
	config  RedditConfig
	limiter *rate.Limiter
}

func NewRedditAdapter(api RedditAPI, config RedditConfig) *RedditAdapter {
	return &RedditAdapter{
		api:     api,
		config:  config,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (a *RedditAdapter) Key() string {
	return "reddit_explorer"
}

func (a *RedditAdapter) Kind() digest.SourceKind {
	return digest.KindLinkPost
}

func (a *RedditAdapter) Collect(ctx context.Context) ([]digest.Item, error) {
	var items []digest.Item

	for _, subreddit := range a.config.Subreddits {
		if err := a.limiter.Wait(ctx); err != nil {
			return items, err
		}

		// Fetch twice the target so exclusions don't starve the cap.
		posts, err := a.api.HotPosts(ctx, subreddit, a.config.PostLimit*2)
		if err != nil {
			slog.Error("Failed to fetch hot posts", "subreddit", subreddit, "error", err)
			continue
		}

		accepted := 0
		for _, post := range posts {
			item, ok := a.normalize(post)
			if !ok {
				continue
			}

			item.Context = a.fetchComments(ctx, post.ID)
			items = append(items, item)

			accepted++
			if accepted >= a.config.PostLimit {
				break
			}
		}

		slog.Info("Subreddit collected", "subreddit", subreddit, "accepted", accepted, "candidates", len(posts))
	}

	return items, nil
}

// normalize classifies and filters one post. The second return is false when
// the post is excluded.
func (a *RedditAdapter) normalize(post RedditPost) (digest.Item, bool) {
	postType := classifyPost(post)

	postURL := post.URL
	if postType == postTypeVideo {
		postURL = videoURL(post)
	}

	if post.Author == automoderatorName {
		return digest.Item{}, false
	}
	if strings.Contains(strings.ToLower(post.Title), "megathread") {
		return digest.Item{}, false
	}
	if post.UpvoteRatio < 0.7 {
		return digest.Item{}, false
	}
	if postType == postTypeGallery || postType == postTypePoll || postType == postTypeCrosspost {
		return digest.Item{}, false
	}

	media := digest.MediaNone
	switch postType {
	case postTypeImage:
		media = digest.MediaImage
	case postTypeVideo:
		media = digest.MediaVideo
	}

	return digest.Item{
		Kind:     digest.KindLinkPost,
		ID:       post.ID,
		Title:    post.Title,
		URL:      postURL,
		Metrics:  map[string]int{"upvotes": post.Ups},
		BodyText: post.SelfText,
		Media:    media,
		Fields: map[string]string{
			"permalink": "https://www.reddit.com" + post.Permalink,
		},
	}, true
}

func (a *RedditAdapter) fetchComments(ctx context.Context, postID string) []string {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil
	}

	comments, err := a.api.TopComments(ctx, postID, a.config.CommentLimit)
	if err != nil {
		slog.Warn("Failed to fetch comments", "post", postID, "error", err)
		return nil
	}

	lines := make([]string, 0, len(comments))
	for _, comment := range comments {
		lines = append(lines, fmt.Sprintf("%d upvotes: %s", comment.Ups, comment.Text))
	}
	return lines
}

func (a *RedditAdapter) BuildPrompt(item digest.Item) (string, string) {
	var instructions strings.Builder

	bodyClause := ""
	if item.BodyText != "" {
		bodyClause = " its body,"
	}
	instructions.WriteString(fmt.Sprintf(
		"The following text is the title of a Reddit post,%s and the main comments on that post.\n", bodyClause))
	instructions.WriteString("Read it carefully and answer the user's questions.\n\n")
	instructions.WriteString(fmt.Sprintf("Title\n'''\n%s\n'''\n\n", item.Title))
	if item.BodyText != "" {
		instructions.WriteString(fmt.Sprintf("Body\n'''\n%s\n'''\n\n", item.BodyText))
	}
	instructions.WriteString(fmt.Sprintf("Comments\n'''\n%s\n'''", strings.Join(item.Context, "\n")))

	content := "Answer the following two questions in order, in detail and clearly.\n\n" +
		"1. Explain what this post is about.\n" +
		"2. Which comments on this post are particularly interesting?\n\n" +
		"Do not output anything other than the answers to these questions."

	return content, instructions.String()
}

// classifyPost maps provider hints to a post type. First match wins, so an
// item carrying both an image hint and a video flag classifies as image.
func classifyPost(post RedditPost) string {
	switch {
	case post.PostHint == "image":
		return postTypeImage
	case post.IsGallery:
		return postTypeGallery
	case post.IsVideo:
		return postTypeVideo
	case post.HasPollData:
		return postTypePoll
	case post.HasCrosspost:
		return postTypeCrosspost
	case post.IsSelf:
		return postTypeText
	default:
		return postTypeLink
	}
}

// videoURL resolves the playable URL from either media field, empty when
// neither yields a fallback URL.
func videoURL(post RedditPost) string {
	if post.Media != nil && post.Media.RedditVideo != nil {
		return post.Media.RedditVideo.FallbackURL
	}
	if post.SecureMedia != nil && post.SecureMedia.RedditVideo != nil {
		return post.SecureMedia.RedditVideo.FallbackURL
	}
	return ""
}

// redditClient is the credentialed HTTP implementation of RedditAPI using
// the application-only OAuth flow.
type redditClient struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	userAgent    string

	tokenURL string
	apiURL   string

	token       string
	tokenExpiry time.Time
}

func NewRedditClient(httpClient *http.Client, clientID, clientSecret, userAgent string) RedditAPI {
	return &redditClient{
		httpClient:   httpClient,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		tokenURL:     "https://www.reddit.com/api/v1/access_token",
		apiURL:       "https://oauth.reddit.com",
	}
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPostJSON `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPostJSON struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	URL             string          `json:"url"`
	Permalink       string          `json:"permalink"`
	Thumbnail       string          `json:"thumbnail"`
	PostHint        string          `json:"post_hint"`
	Ups             int             `json:"ups"`
	UpvoteRatio     float64         `json:"upvote_ratio"`
	SelfText        string          `json:"selftext"`
	IsGallery       bool            `json:"is_gallery"`
	IsVideo         bool            `json:"is_video"`
	IsSelf          bool            `json:"is_self"`
	PollData        json.RawMessage `json:"poll_data"`
	CrosspostParent json.RawMessage `json:"crosspost_parent"`
	Media           *RedditMedia    `json:"media"`
	SecureMedia     *RedditMedia    `json:"secure_media"`
}

func (c *redditClient) HotPosts(ctx context.Context, subreddit string, limit int) ([]RedditPost, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot?limit=%d&raw_json=1", c.apiURL, url.PathEscape(subreddit), limit)

	var listing redditListing
	if err := c.get(ctx, endpoint, &listing); err != nil {
		return nil, err
	}

	posts := make([]RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		posts = append(posts, child.Data.toPost())
	}
	return posts, nil
}

func (p redditPostJSON) toPost() RedditPost {
	return RedditPost{
		ID:           p.ID,
		Title:        p.Title,
		Author:       p.Author,
		URL:          p.URL,
		Permalink:    p.Permalink,
		Thumbnail:    p.Thumbnail,
		PostHint:     p.PostHint,
		Ups:          p.Ups,
		UpvoteRatio:  p.UpvoteRatio,
		SelfText:     p.SelfText,
		IsGallery:    p.IsGallery,
		IsVideo:      p.IsVideo,
		IsSelf:       p.IsSelf,
		HasPollData:  rawPresent(p.PollData),
		HasCrosspost: rawPresent(p.CrosspostParent),
		Media:        p.Media,
		SecureMedia:  p.SecureMedia,
	}
}

func rawPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

type redditCommentListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				Body string `json:"body"`
				Ups  int    `json:"ups"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (c *redditClient) TopComments(ctx context.Context, postID string, limit int) ([]RedditComment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s?limit=%d&depth=1&raw_json=1", c.apiURL, url.PathEscape(postID), limit)

	// The comments endpoint returns a two-element array: the post listing
	// and the comment listing.
	var pages []redditCommentListing
	if err := c.get(ctx, endpoint, &pages); err != nil {
		return nil, err
	}
	if len(pages) < 2 {
		return nil, nil
	}

	comments := make([]RedditComment, 0, limit)
	for _, child := range pages[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		comments = append(comments, RedditComment{Text: child.Data.Body, Ups: child.Data.Ups})
		if len(comments) >= limit {
			break
		}
	}
	return comments, nil
}

func (c *redditClient) get(ctx context.Context, endpoint string, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *redditClient) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request failed: %d %s", resp.StatusCode, resp.Status)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	c.token = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second)
	return c.token, nil
}
