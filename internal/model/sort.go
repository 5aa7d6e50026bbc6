package model

import "strings"

// SortKey is a "field:direction" pair understood by GET /tasks.
type SortKey string

const (
	SortNewest     SortKey = "createdAt:desc"
	SortOldest     SortKey = "createdAt:asc"
	SortDueSoon    SortKey = "dueDate:asc"
	SortDueLatest  SortKey = "dueDate:desc"
	DefaultSortKey         = SortNewest
)

// SortKeys is the selectable set, in cycling order.
var SortKeys = []SortKey{SortNewest, SortOldest, SortDueSoon, SortDueLatest}

func (k SortKey) IsValid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

func (k SortKey) Field() string {
	field, _, _ := strings.Cut(string(k), ":")
	return field
}

func (k SortKey) Descending() bool {
	_, dir, _ := strings.Cut(string(k), ":")
	return dir == "desc"
}

func (k SortKey) Label() string {
	switch k {
	case SortNewest:
		return "Newest"
	case SortOldest:
		return "Oldest"
	case SortDueSoon:
		return "Due Soon"
	case SortDueLatest:
		return "Due Latest"
	default:
		return string(k)
	}
}
