package model

// Post is one Reddit submission in the community feed. Unlike places, posts
// have a fixed shape, so they are a struct rather than a field map.
type Post struct {
	RedditID   string   `json:"reddit_id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Content    string   `json:"content,omitempty"`
	Flair      string   `json:"flair,omitempty"`
	CreatedUTC int64    `json:"created_utc"`
	Media      string   `json:"media,omitempty"`
	Category   Category `json:"category"`
	URL        string   `json:"url"`
}
