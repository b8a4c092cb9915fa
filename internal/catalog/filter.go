package catalog

import "strings"

// All is the filter value that disables category filtering.
const All = "all"

// FilterByCategory keeps the items whose Group equals category, ignoring case.
// "all" returns items unchanged.
func FilterByCategory(items []Item, category string) []Item {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, All) {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.EqualFold(it.Group(), category) {
			out = append(out, it)
		}
	}
	return out
}

// Search keeps the items where title, location, brand, type, kind or any spec
// contains query, ignoring case. Result order is catalog order.
func Search(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	out := make([]Item, 0)
	for _, it := range items {
		if matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matches(it Item, q string) bool {
	fields := []string{it.Title, it.Location, it.Brand, it.Type, it.Kind}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, s := range it.Specs {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Featured returns the items flagged for the home page.
func Featured(items []Item) []Item {
	out := make([]Item, 0)
	for _, it := range items {
		if it.Featured {
			out = append(out, it)
		}
	}
	return out
}
