package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/magic-city-guide/poi-cli/internal/fetch"
)

var (
	redditSubreddit string
	redditSort      string
	redditLimit     int
)

var fetchRedditCmd = &cobra.Command{
	Use:   "reddit",
	Short: "Fetch subreddit posts, categorize them, and store them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("reddit"); err != nil {
			return err
		}

		subreddit := redditSubreddit
		if subreddit == "" {
			subreddit = cfg.Reddit.Subreddit
		}
		if subreddit == "" {
			return eris.New("subreddit is required (--subreddit or reddit.subreddit)")
		}

		client := fetch.NewClient(cfg.Fetch.ClientOptions())
		reddit := fetch.NewReddit(client, cfg.Reddit)

		posts, err := reddit.Fetch(ctx, subreddit, redditSort, redditLimit)
		if err != nil {
			return eris.Wrap(err, "fetch reddit")
		}

		classifier, err := cfg.Classify.Classifier()
		if err != nil {
			return eris.Wrap(err, "build classifier")
		}
		classifier.LabelPosts(posts)

		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "init store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		written, err := st.UpsertPosts(ctx, posts)
		if err != nil {
			return eris.Wrap(err, "upsert posts")
		}

		zap.L().Info("reddit sync complete",
			zap.String("subreddit", subreddit),
			zap.Int("fetched", len(posts)),
			zap.Int("written", written),
		)
		return nil
	},
}

func init() {
	fetchRedditCmd.Flags().StringVar(&redditSubreddit, "subreddit", "", "subreddit to fetch (default from config)")
	fetchRedditCmd.Flags().StringVar(&redditSort, "sort", "hot", "listing order (hot, new, or top)")
	fetchRedditCmd.Flags().IntVar(&redditLimit, "limit", 25, "maximum posts to fetch")
	fetchCmd.AddCommand(fetchRedditCmd)
}
