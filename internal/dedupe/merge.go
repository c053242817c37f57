package dedupe

import (
	"sort"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

// Merge collapses records sharing a grouping key into one record per group.
// Within a group the most complete record (highest InfoScore over
// attributes, earliest wins ties) becomes the base; every other member
// backfills fields the base left empty, first non-empty value in input order
// winning. The result is sorted by name so output never depends on map
// iteration order.
func Merge(records []model.Record, key KeyFunc, attributes []string) []model.Record {
	if len(records) == 0 {
		return nil
	}

	// Partition preserving first-seen order of groups and members.
	var order []string
	groups := make(map[string][]model.Record, len(records))
	for _, r := range records {
		k := key(r)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	merged := make([]model.Record, 0, len(order))
	for _, k := range order {
		merged = append(merged, mergeGroup(groups[k], attributes))
	}

	sortByName(merged)
	return merged
}

// mergeGroup builds the consolidated record for one duplicate group.
func mergeGroup(group []model.Record, attributes []string) model.Record {
	base := group[0]
	bestScore := InfoScore(base, attributes)
	for _, r := range group[1:] {
		if s := InfoScore(r, attributes); s > bestScore {
			base = r
			bestScore = s
		}
	}

	out := base.Clone()
	for _, r := range group {
		for field, value := range r {
			out.SetIfEmpty(field, value)
		}
	}
	return out
}

// MergeInto folds addition records into an existing dataset. Additions whose
// key matches an existing record backfill its empty fields; the rest are
// appended as new records. Existing values always win, and when the existing
// dataset itself carries duplicate keys the later duplicates backfill the
// first. The result is sorted by name.
func MergeInto(existing, additions []model.Record, key KeyFunc) []model.Record {
	var order []string
	byKey := make(map[string]model.Record, len(existing)+len(additions))

	fold := func(r model.Record) {
		k := key(r)
		current, seen := byKey[k]
		if !seen {
			order = append(order, k)
			byKey[k] = r.Clone()
			return
		}
		for field, value := range r {
			current.SetIfEmpty(field, value)
		}
	}

	for _, r := range existing {
		fold(r)
	}
	for _, add := range additions {
		fold(add)
	}

	merged := make([]model.Record, 0, len(order))
	for _, k := range order {
		merged = append(merged, byKey[k])
	}

	sortByName(merged)
	return merged
}

func sortByName(records []model.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Get(model.FieldName) < records[j].Get(model.FieldName)
	})
}
