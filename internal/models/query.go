package models

import (
	"fmt"
)

// FilterAction identifies a comparison applied between a field path and the
// filter's values.
type FilterAction string

// Supported filter actions.
const (
	ActionExists        FilterAction = "exists"
	ActionIsNull        FilterAction = "is_null"
	ActionIsNullOrEmpty FilterAction = "is_null_or_empty"
	ActionStartsWith    FilterAction = "starts_with"
	ActionContains      FilterAction = "contains"
	ActionEndsWith      FilterAction = "ends_with"
	ActionEquals        FilterAction = "equals"
	ActionNotEquals     FilterAction = "not_equals"
	ActionGreater       FilterAction = "greater"
	ActionGreaterEqual  FilterAction = "greater_equal"
	ActionLess          FilterAction = "less"
	ActionLessEqual     FilterAction = "less_equal"
)

var knownActions = map[FilterAction]bool{
	ActionExists:        true,
	ActionIsNull:        true,
	ActionIsNullOrEmpty: true,
	ActionStartsWith:    true,
	ActionContains:      true,
	ActionEndsWith:      true,
	ActionEquals:        true,
	ActionNotEquals:     true,
	ActionGreater:       true,
	ActionGreaterEqual:  true,
	ActionLess:          true,
	ActionLessEqual:     true,
}

// NeedsValue reports whether the action compares against supplied values.
// Presence checks (exists, is_null, is_null_or_empty) take none.
func (a FilterAction) NeedsValue() bool {
	switch a {
	case ActionExists, ActionIsNull, ActionIsNullOrEmpty:
		return false
	}
	return true
}

// PropertyFilter matches one field path against one or more raw values.
// Values within one filter combine with OR; separate filters combine with AND.
type PropertyFilter struct {
	Path   string       `json:"path"`
	Action FilterAction `json:"action"`
	Values []string     `json:"values,omitempty"`
}

// SortSpec orders results by one field path.
type SortSpec struct {
	Path       string `json:"path"`
	Descending bool   `json:"desc,omitempty"`
}

// Pagination defaults and caps.
const (
	DefaultPageLength = 50
	MaxPageLength     = 500
)

// QueryRequest is the body of list, export and neighbor lookups: structured
// filters, ordering, pagination and an optional free-text search over the
// entity's filterable string fields.
type QueryRequest struct {
	Filters []PropertyFilter `json:"filters,omitempty"`
	Sorts   []SortSpec       `json:"sorts,omitempty"`
	Search  string           `json:"search,omitempty"`
	Page    int              `json:"page,omitempty"`
	Length  *int             `json:"length,omitempty"`
}

// Validate checks structural limits on the request. Path and action
// resolution against the entity schema happens later, per entry, so one bad
// filter surfaces as a client error naming that entry.
func (r *QueryRequest) Validate() error {
	if len(r.Filters) > 50 {
		return fmt.Errorf("too many filters (max 50)")
	}

	for i, f := range r.Filters {
		if f.Path == "" {
			return fmt.Errorf("filter %d: path is required", i)
		}
		if len(f.Path) > 200 {
			return ErrFieldTooLong(fmt.Sprintf("filter %d path", i), 200)
		}
		if !knownActions[f.Action] {
			return fmt.Errorf("filter %d: unknown action %q", i, f.Action)
		}
		if f.Action.NeedsValue() && len(f.Values) == 0 {
			return fmt.Errorf("filter %d: action %q requires at least one value", i, f.Action)
		}
		if len(f.Values) > 100 {
			return fmt.Errorf("filter %d: too many values (max 100)", i)
		}
		for _, v := range f.Values {
			if len(v) > 1000 {
				return ErrFieldTooLong(fmt.Sprintf("filter %d value", i), 1000)
			}
		}
	}

	if len(r.Sorts) > 10 {
		return fmt.Errorf("too many sorts (max 10)")
	}

	for i, s := range r.Sorts {
		if s.Path == "" {
			return fmt.Errorf("sort %d: path is required", i)
		}
		if len(s.Path) > 200 {
			return ErrFieldTooLong(fmt.Sprintf("sort %d path", i), 200)
		}
	}

	if len(r.Search) > 500 {
		return ErrFieldTooLong("search", 500)
	}

	if r.Page < 0 {
		return fmt.Errorf("page must not be negative")
	}

	if r.Length != nil {
		if *r.Length < 1 {
			return fmt.Errorf("length must be positive")
		}
		if *r.Length > MaxPageLength {
			return fmt.Errorf("length must not exceed %d", MaxPageLength)
		}
	} else if r.Page > 0 {
		// A page without a length gets the default page size.
		n := DefaultPageLength
		r.Length = &n
	}

	return nil
}

// Paginated reports whether the request asks for a bounded page. Without a
// length the full result set is returned and the reported offset is zero.
func (r *QueryRequest) Paginated() bool {
	return r.Length != nil
}

// Limit returns the page size, or 0 when unpaginated.
func (r *QueryRequest) Limit() int {
	if r.Length == nil {
		return 0
	}
	return *r.Length
}

// Offset returns page*length, or 0 when unpaginated.
func (r *QueryRequest) Offset() int {
	if r.Length == nil {
		return 0
	}
	return r.Page * *r.Length
}

// NeighborRequest asks for the records adjacent to one record under the
// query's ordering and filters.
type NeighborRequest struct {
	QueryRequest
	ID string `json:"id"`
}

// Neighbors carries the cursors of the records on either side of a record
// within an ordered result set. A cursor is the neighbor's canonical primary
// key; an absent neighbor is an empty string.
type Neighbors struct {
	Next     string `json:"next_cursor,omitempty"`
	Previous string `json:"previous_cursor,omitempty"`
}
