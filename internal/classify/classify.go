package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/magic-city-guide/poi-cli/internal/model"
	"github.com/magic-city-guide/poi-cli/internal/text"
)

// Default thresholds for the two classifier instantiations. They are
// independent tuning knobs, not a shared constant.
const (
	DefaultCategoryThreshold = 0.2
	DefaultCuisineThreshold  = 0.35
)

// SubstringBoost is the score assigned when a secondary field literally
// contains a label keyword as a normalized substring. Direct evidence is
// trusted over fuzzy bigram overlap and wins only by being larger. The value
// is inherited behavior with no stated derivation; it is configurable rather
// than justified.
const SubstringBoost = 0.6

// Classify scores primary+secondary text against every labeled keyword list
// and returns the best label at or above threshold. Labels with no keywords
// are skipped. Ties go to the earlier table entry.
func Classify(primary string, secondary []string, table Table, threshold float64) (string, bool) {
	label, score := scan(primary, secondary, table, 0)
	if score < threshold {
		return "", false
	}
	return label, true
}

// ClassifyBoosted is Classify with the substring-evidence boost: a label
// whose keyword appears verbatim (normalized) inside any secondary field
// scores at least boost.
func ClassifyBoosted(primary string, secondary []string, table Table, threshold, boost float64) (string, bool) {
	label, score := scan(primary, secondary, table, boost)
	if score < threshold {
		return "", false
	}
	return label, true
}

func scan(primary string, secondary []string, table Table, boost float64) (string, float64) {
	parts := make([]string, 0, len(secondary)+1)
	if p := text.Normalize(primary); p != "" {
		parts = append(parts, p)
	}
	normalizedSecondary := make([]string, 0, len(secondary))
	for _, s := range secondary {
		n := text.Normalize(s)
		normalizedSecondary = append(normalizedSecondary, n)
		if n != "" {
			parts = append(parts, n)
		}
	}
	search := strings.Join(parts, " ")

	bestLabel := ""
	bestScore := 0.0
	for _, entry := range table {
		if len(entry.Keywords) == 0 {
			continue
		}

		score := 0.0
		for _, keyword := range entry.Keywords {
			if s := text.Score(search, keyword); s > score {
				score = s
			}
		}

		if boost > score {
			for _, keyword := range entry.Keywords {
				kw := text.Normalize(keyword)
				if kw == "" {
					continue
				}
				if containsKeyword(normalizedSecondary, kw) {
					score = boost
					break
				}
			}
		}

		if score > bestScore {
			bestLabel = entry.Label
			bestScore = score
		}
	}

	return bestLabel, bestScore
}

func containsKeyword(fields []string, keyword string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(f, keyword) {
			return true
		}
	}
	return false
}

// Classifier holds configured tables and thresholds for labeling records.
type Classifier struct {
	tables            Tables
	cuisineThreshold  float64
	categoryThreshold float64
	boost             float64
}

// Option tunes a Classifier.
type Option func(*Classifier)

// WithCuisineThreshold overrides the cuisine match threshold.
func WithCuisineThreshold(v float64) Option {
	return func(c *Classifier) { c.cuisineThreshold = v }
}

// WithCategoryThreshold overrides the category match threshold.
func WithCategoryThreshold(v float64) Option {
	return func(c *Classifier) { c.categoryThreshold = v }
}

// WithSubstringBoost overrides the substring-evidence score.
func WithSubstringBoost(v float64) Option {
	return func(c *Classifier) { c.boost = v }
}

// New creates a Classifier with the given tables and default thresholds.
func New(tables Tables, opts ...Option) *Classifier {
	c := &Classifier{
		tables:            tables,
		cuisineThreshold:  DefaultCuisineThreshold,
		categoryThreshold: DefaultCategoryThreshold,
		boost:             SubstringBoost,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cuisine guesses the cuisine from a place name and secondary evidence
// (existing cuisine/category text from the source).
func (c *Classifier) Cuisine(name string, secondary ...string) (model.Cuisine, bool) {
	label, ok := ClassifyBoosted(name, secondary, c.tables.Cuisine, c.cuisineThreshold, c.boost)
	if !ok {
		return "", false
	}
	return model.Cuisine(label), true
}

// Category guesses a category from free text such as a name or post title.
func (c *Classifier) Category(title string, secondary ...string) (model.Category, bool) {
	label, ok := Classify(title, secondary, c.tables.Category, c.categoryThreshold)
	if !ok {
		return "", false
	}
	return model.Category(label), true
}

// LabelPosts assigns a category to every post from its title and flair, in
// place. Posts that match nothing get the catch-all label so the feed is
// always filterable.
func (c *Classifier) LabelPosts(posts []model.Post) {
	for i := range posts {
		category, ok := c.Category(posts[i].Title, posts[i].Flair)
		if !ok {
			category = model.CategoryOther
		}
		posts[i].Category = category
	}
}

// labelWorkers bounds the fan-out of LabelAll. Classification is pure CPU
// work over small strings, so a small fixed pool is plenty.
const labelWorkers = 8

// LabelAll backfills missing cuisine (restaurants) or category (hikes)
// labels across records, in place, and returns how many records were
// labeled. Records that already carry the field are left alone.
func (c *Classifier) LabelAll(ctx context.Context, kind model.Kind, records []model.Record) (int, error) {
	labeled := make([]bool, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(labelWorkers)
	for i, r := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			switch kind {
			case model.KindHikes:
				if r.Has(model.FieldCategory) {
					return nil
				}
				if label, ok := c.Category(r.Get(model.FieldName), r.Get(model.FieldType)); ok {
					r.Set(model.FieldCategory, string(label))
					labeled[i] = true
				}
			default:
				if r.Has(model.FieldCuisine) {
					return nil
				}
				if label, ok := c.Cuisine(r.Get(model.FieldName), r.Get(model.FieldCategory)); ok {
					r.Set(model.FieldCuisine, string(label))
					labeled[i] = true
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	count := 0
	for _, ok := range labeled {
		if ok {
			count++
		}
	}
	zap.L().Info("classification pass complete",
		zap.String("kind", string(kind)),
		zap.Int("records", len(records)),
		zap.Int("labeled", count),
	)
	return count, nil
}
