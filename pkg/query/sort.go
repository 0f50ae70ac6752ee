package query

import "strings"

const (
	// SortNone disables sorting and leaves results in store default order.
	SortNone = "none"

	// DescendingMarker prefixes a field name to request descending order.
	DescendingMarker = "-"
)

// Sort orders results on a single field.
type Sort struct {
	Field      string
	Descending bool
}

// ParseSort converts an order-by expression into a Sort.
// "-createdAt" sorts descending on createdAt, "createdAt" ascending,
// and "none" or an empty expression returns nil.
func ParseSort(orderBy string) *Sort {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" || orderBy == SortNone {
		return nil
	}

	if field, ok := strings.CutPrefix(orderBy, DescendingMarker); ok {
		if field == "" {
			return nil
		}
		return &Sort{Field: field, Descending: true}
	}

	return &Sort{Field: orderBy}
}

// Direction returns 1 for ascending and -1 for descending, the document-store convention.
func (s Sort) Direction() int {
	if s.Descending {
		return -1
	}
	return 1
}

func (s Sort) String() string {
	if s.Descending {
		return DescendingMarker + s.Field
	}
	return s.Field
}
