package model

// Cuisine represents a classified restaurant cuisine.
type Cuisine string

const (
	CuisineAmerican      Cuisine = "American"
	CuisineBarbecue      Cuisine = "Barbecue"
	CuisineBreakfast     Cuisine = "Breakfast"
	CuisineBritish       Cuisine = "British"
	CuisineCafe          Cuisine = "Cafe"
	CuisineChinese       Cuisine = "Chinese"
	CuisineFrench        Cuisine = "French"
	CuisineGreek         Cuisine = "Greek"
	CuisineIndian        Cuisine = "Indian"
	CuisineItalian       Cuisine = "Italian"
	CuisineJapanese      Cuisine = "Japanese"
	CuisineMediterranean Cuisine = "Mediterranean"
	CuisineMexican       Cuisine = "Mexican"
	CuisineMiddleEastern Cuisine = "Middle Eastern"
	CuisineThai          Cuisine = "Thai"
	CuisineVietnamese    Cuisine = "Vietnamese"
)

// AllCuisines returns all defined cuisines in table order.
func AllCuisines() []Cuisine {
	return []Cuisine{
		CuisineAmerican,
		CuisineBarbecue,
		CuisineBreakfast,
		CuisineBritish,
		CuisineCafe,
		CuisineChinese,
		CuisineFrench,
		CuisineGreek,
		CuisineIndian,
		CuisineItalian,
		CuisineJapanese,
		CuisineMediterranean,
		CuisineMexican,
		CuisineMiddleEastern,
		CuisineThai,
		CuisineVietnamese,
	}
}

// Valid reports whether c is a known cuisine label.
func (c Cuisine) Valid() bool {
	for _, known := range AllCuisines() {
		if c == known {
			return true
		}
	}
	return false
}

// Category represents a classified point-of-interest category.
type Category string

const (
	CategoryJobs     Category = "jobs"
	CategoryFood     Category = "food"
	CategoryOutdoors Category = "outdoors"
	CategoryBars     Category = "bars"

	// CategoryOther is the catch-all sentinel. It has no keywords and is
	// never matched directly.
	CategoryOther Category = "other"
)

// AllCategories returns all defined categories in table order.
func AllCategories() []Category {
	return []Category{
		CategoryJobs,
		CategoryFood,
		CategoryOutdoors,
		CategoryBars,
		CategoryOther,
	}
}

// Valid reports whether c is a known category label.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}
