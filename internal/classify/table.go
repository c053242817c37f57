// Package classify assigns cuisine and category labels to records by fuzzy
// keyword matching. Classification is a pure function of the text and the
// configured keyword tables; attaching the label to a record is the
// caller's job.
package classify

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// Entry pairs a label with the keywords that evidence it. An entry with no
// keywords is a catch-all sentinel and is never matched directly.
type Entry struct {
	Label    string
	Keywords []string
}

// Table is an ordered keyword table. Order is the tie-break: when two labels
// score identically the earlier entry wins.
type Table []Entry

var cuisineKeywords = map[model.Cuisine][]string{
	model.CuisineAmerican:      {"american", "burgers", "diner"},
	model.CuisineBarbecue:      {"bbq", "barbecue", "smokehouse"},
	model.CuisineBreakfast:     {"brunch", "breakfast", "pancake"},
	model.CuisineBritish:       {"british", "pub", "fish and chips"},
	model.CuisineCafe:          {"cafe", "coffee", "espresso"},
	model.CuisineChinese:       {"chinese", "szechuan", "dimsum"},
	model.CuisineFrench:        {"french", "bistro", "brasserie"},
	model.CuisineGreek:         {"greek", "gyro", "souvlaki"},
	model.CuisineIndian:        {"indian", "curry", "tandoori"},
	model.CuisineItalian:       {"italian", "pasta", "pizza"},
	model.CuisineJapanese:      {"japanese", "sushi", "ramen", "izakaya"},
	model.CuisineMediterranean: {"mediterranean", "mezze"},
	model.CuisineMexican:       {"mexican", "taco", "burrito"},
	model.CuisineMiddleEastern: {"middle eastern", "lebanese", "shawarma"},
	model.CuisineThai:          {"thai", "pad thai", "curry"},
	model.CuisineVietnamese:    {"vietnamese", "pho", "banh mi"},
}

var categoryKeywords = map[model.Category][]string{
	model.CategoryJobs:     {"hiring", "job", "career", "looking for work", "internship"},
	model.CategoryFood:     {"food", "restaurant", "dinner", "lunch", "pizza", "burger"},
	model.CategoryOutdoors: {"hike", "trail", "park", "outdoors", "camp"},
	model.CategoryBars:     {"bar", "pub", "brewery", "cocktail", "drinks"},
	// CategoryOther has no keywords: it is the result of not matching,
	// never a match itself.
	model.CategoryOther: nil,
}

// DefaultCuisineTable returns the built-in cuisine keyword table, in
// AllCuisines order.
func DefaultCuisineTable() Table {
	cuisines := model.AllCuisines()
	table := make(Table, 0, len(cuisines))
	for _, cuisine := range cuisines {
		table = append(table, Entry{Label: string(cuisine), Keywords: cuisineKeywords[cuisine]})
	}
	return table
}

// DefaultCategoryTable returns the built-in category keyword table, in
// AllCategories order.
func DefaultCategoryTable() Table {
	categories := model.AllCategories()
	table := make(Table, 0, len(categories))
	for _, category := range categories {
		table = append(table, Entry{Label: string(category), Keywords: categoryKeywords[category]})
	}
	return table
}

// Tables bundles the keyword tables for both classifier instantiations.
type Tables struct {
	Cuisine  Table
	Category Table
}

// DefaultTables returns the built-in tables.
func DefaultTables() Tables {
	return Tables{Cuisine: DefaultCuisineTable(), Category: DefaultCategoryTable()}
}

// tablesFile is the YAML override layout: label → keyword list per table.
type tablesFile struct {
	Cuisine  map[string][]string `yaml:"cuisine"`
	Category map[string][]string `yaml:"category"`
}

// LoadTables reads keyword table overrides from a YAML file. A table absent
// from the file keeps its built-in default. YAML maps are unordered, so
// loaded entries are sorted by label to keep tie-breaking deterministic.
func LoadTables(path string) (Tables, error) {
	tables := DefaultTables()

	data, err := os.ReadFile(path)
	if err != nil {
		return tables, eris.Wrapf(err, "classify: read tables %s", path)
	}

	var file tablesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return tables, eris.Wrap(err, "classify: parse tables")
	}

	if len(file.Cuisine) > 0 {
		tables.Cuisine = tableFromMap(file.Cuisine)
		warnUnknownLabels("cuisine", tables.Cuisine, func(label string) bool {
			return model.Cuisine(label).Valid()
		})
	}
	if len(file.Category) > 0 {
		tables.Category = tableFromMap(file.Category)
		warnUnknownLabels("category", tables.Category, func(label string) bool {
			return model.Category(label).Valid()
		})
	}
	return tables, nil
}

// warnUnknownLabels flags override labels outside the built-in sets. They
// still classify; the warning catches typos in the override file.
func warnUnknownLabels(table string, entries Table, known func(string) bool) {
	for _, entry := range entries {
		if !known(entry.Label) {
			zap.L().Warn("classify: label not in built-in set",
				zap.String("table", table),
				zap.String("label", entry.Label),
			)
		}
	}
}

func tableFromMap(m map[string][]string) Table {
	labels := make([]string, 0, len(m))
	for label := range m {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	table := make(Table, 0, len(labels))
	for _, label := range labels {
		table = append(table, Entry{Label: label, Keywords: m[label]})
	}
	return table
}
