package fetch

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// RedditConfig configures the subreddit post fetcher.
type RedditConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Subreddit string `yaml:"subreddit" mapstructure:"subreddit"`
}

// Reddit fetches submissions from a subreddit's public JSON listing.
type Reddit struct {
	client *Client
	cfg    RedditConfig
}

// NewReddit creates a Reddit fetcher.
func NewReddit(client *Client, cfg RedditConfig) *Reddit {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	return &Reddit{client: client, cfg: cfg}
}

// redditSorts are the listing orders the public API accepts.
var redditSorts = map[string]bool{"hot": true, "new": true, "top": true}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Selftext   string  `json:"selftext"`
	Flair      string  `json:"link_flair_text"`
	CreatedUTC float64 `json:"created_utc"`
	Media      string  `json:"url_overridden_by_dest"`
	Permalink  string  `json:"permalink"`
}

// Fetch returns up to limit posts from the subreddit in the given sort
// order. Posts come back unlabeled; categorization is the caller's job.
func (r *Reddit) Fetch(ctx context.Context, subreddit, sort string, limit int) ([]model.Post, error) {
	if subreddit == "" {
		return nil, eris.New("reddit: subreddit is required")
	}
	if !redditSorts[sort] {
		return nil, eris.Errorf("reddit: unknown sort %q (expected hot, new, or top)", sort)
	}
	if limit <= 0 {
		limit = 25
	}

	var listing redditListing
	target := r.cfg.BaseURL + "/r/" + subreddit + "/" + sort + ".json"
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := r.client.GetJSON(ctx, target, params, &listing); err != nil {
		return nil, eris.Wrapf(err, "reddit: fetch r/%s", subreddit)
	}

	posts := make([]model.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		item := child.Data
		if item.ID == "" {
			continue
		}
		posts = append(posts, model.Post{
			RedditID:   item.ID,
			Title:      item.Title,
			Author:     item.Author,
			Content:    strings.TrimSpace(item.Selftext),
			Flair:      item.Flair,
			CreatedUTC: int64(item.CreatedUTC),
			Media:      item.Media,
			URL:        r.cfg.BaseURL + item.Permalink,
		})
	}

	zap.L().Info("reddit fetch complete",
		zap.String("subreddit", subreddit),
		zap.String("sort", sort),
		zap.Int("posts", len(posts)),
	)
	return posts, nil
}
