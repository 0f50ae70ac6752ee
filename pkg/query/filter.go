// Package query describes document-store filters and sort orders and renders
// them as parameterized SQL for stores backed by a JSON document column.
package query

import (
	"net/url"
	"sort"
)

// Filter is a set of field equality constraints applied to a collection.
type Filter map[string]any

// FilterFromQuery keeps only the query keys present in allowed.
// Keys outside the allow-list and keys with empty values are ignored, never an error.
func FilterFromQuery(values url.Values, allowed []string) Filter {
	f := Filter{}
	for _, field := range allowed {
		if v := values.Get(field); v != "" {
			f[field] = v
		}
	}
	return f
}

// Fields returns the filter keys in sorted order so rendered queries are deterministic.
func (f Filter) Fields() []string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
