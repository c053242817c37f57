// Package model defines the record, field set, and label types shared across
// the aggregation pipeline.
package model

// Field names recognized by the pipeline. A Record may carry additional
// columns from its source; those survive round-trips but are never scored.
const (
	FieldName      = "name"
	FieldAddress   = "address"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldHours     = "hours"
	FieldWebsite   = "website"
	FieldMenu      = "menu"
	FieldPhone     = "phone"
	FieldCuisine   = "cuisine"
	FieldCategory  = "category"
	FieldType      = "type"
	FieldSource    = "source"
	FieldMapsLink  = "maps_link"
)

// Record is one point of interest as a flat field→value mapping.
// An empty string means the field is absent; there is no separate null state.
type Record map[string]string

// Get returns the value for field, or "" when the field is not set.
func (r Record) Get(field string) string {
	return r[field]
}

// Has reports whether field carries a non-empty value.
func (r Record) Has(field string) bool {
	return r[field] != ""
}

// Set assigns value to field. Setting "" is allowed and means absent.
func (r Record) Set(field, value string) {
	r[field] = value
}

// SetIfEmpty assigns value to field only when the field is currently empty
// and value is not. Reports whether an assignment happened.
func (r Record) SetIfEmpty(field, value string) bool {
	if r[field] != "" || value == "" {
		return false
	}
	r[field] = value
	return true
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FieldSet is the ordered list of recognized field names for a dataset.
// The order is the column order used when writing the dataset back out.
type FieldSet []string

// Contains reports whether the field set includes field.
func (fs FieldSet) Contains(field string) bool {
	for _, f := range fs {
		if f == field {
			return true
		}
	}
	return false
}

// RestaurantFields is the column order of the restaurants dataset.
var RestaurantFields = FieldSet{
	FieldName,
	FieldAddress,
	FieldLatitude,
	FieldLongitude,
	FieldHours,
	FieldWebsite,
	FieldMenu,
	FieldPhone,
	FieldCuisine,
	FieldSource,
	FieldMapsLink,
}

// HikeFields is the column order of the hikes dataset.
var HikeFields = FieldSet{
	FieldName,
	FieldType,
	FieldAddress,
	FieldLatitude,
	FieldLongitude,
	FieldHours,
	FieldWebsite,
	FieldPhone,
	FieldSource,
	FieldMapsLink,
}

// RestaurantScoreFields are the attributes counted when ranking restaurant
// records by completeness within a duplicate group.
var RestaurantScoreFields = []string{
	FieldAddress,
	FieldLatitude,
	FieldLongitude,
	FieldHours,
	FieldWebsite,
	FieldPhone,
	FieldCuisine,
	FieldMapsLink,
	FieldSource,
}

// HikeScoreFields are the attributes counted when ranking hike records.
var HikeScoreFields = []string{
	FieldAddress,
	FieldWebsite,
	FieldPhone,
	FieldHours,
	FieldLatitude,
	FieldLongitude,
}

// Kind identifies which dataset a record belongs to.
type Kind string

const (
	KindRestaurants Kind = "restaurants"
	KindHikes       Kind = "hikes"
)

// Valid reports whether k is a known dataset kind.
func (k Kind) Valid() bool {
	return k == KindRestaurants || k == KindHikes
}

// Fields returns the dataset column order for the kind.
func (k Kind) Fields() FieldSet {
	if k == KindHikes {
		return HikeFields
	}
	return RestaurantFields
}

// ScoreFields returns the completeness attributes for the kind.
func (k Kind) ScoreFields() []string {
	if k == KindHikes {
		return HikeScoreFields
	}
	return RestaurantScoreFields
}
