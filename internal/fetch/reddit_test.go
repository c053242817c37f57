package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReddit_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/Birmingham/hot.json", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"data":{"children":[
			{"data":{"id":"abc1","title":"Best BBQ in town?","author":"bhamfan",
			 "selftext":"  Looking for recommendations.  ","link_flair_text":"Food",
			 "created_utc":1724800000.0,"permalink":"/r/Birmingham/comments/abc1/best_bbq/"}},
			{"data":{"id":"abc2","title":"Ruffner Mountain this weekend","author":"trailrunner",
			 "selftext":"","created_utc":1724700000.0,
			 "url_overridden_by_dest":"https://i.redd.it/trail.jpg",
			 "permalink":"/r/Birmingham/comments/abc2/ruffner/"}},
			{"data":{"id":"","title":"ghost entry"}}
		]}}`))
	}))
	defer srv.Close()

	rd := NewReddit(NewClient(Options{}), RedditConfig{BaseURL: srv.URL})

	posts, err := rd.Fetch(context.Background(), "Birmingham", "hot", 25)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "abc1", first.RedditID)
	assert.Equal(t, "Best BBQ in town?", first.Title)
	assert.Equal(t, "bhamfan", first.Author)
	assert.Equal(t, "Looking for recommendations.", first.Content)
	assert.Equal(t, "Food", first.Flair)
	assert.Equal(t, int64(1724800000), first.CreatedUTC)
	assert.Equal(t, srv.URL+"/r/Birmingham/comments/abc1/best_bbq/", first.URL)
	assert.Empty(t, first.Category)

	assert.Equal(t, "https://i.redd.it/trail.jpg", posts[1].Media)
	assert.Empty(t, posts[1].Content)
}

func TestReddit_FetchUnknownSort(t *testing.T) {
	rd := NewReddit(NewClient(Options{}), RedditConfig{})

	_, err := rd.Fetch(context.Background(), "Birmingham", "rising", 10)
	assert.ErrorContains(t, err, "unknown sort")
}

func TestReddit_FetchRequiresSubreddit(t *testing.T) {
	rd := NewReddit(NewClient(Options{}), RedditConfig{})

	_, err := rd.Fetch(context.Background(), "", "hot", 10)
	assert.ErrorContains(t, err, "subreddit")
}
