package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/corralhq/corral/internal/models"
	"github.com/corralhq/corral/internal/schema"
)

var orderedOps = map[models.FilterAction]string{
	models.ActionGreater:      ">",
	models.ActionGreaterEqual: ">=",
	models.ActionLess:         "<",
	models.ActionLessEqual:    "<=",
}

// compileFilter builds the predicate for one filter entry. Values within
// the entry combine with OR; the caller ANDs entries together.
func (c *compiler) compileFilter(f *models.PropertyFilter) (string, error) {
	r, rerr := c.resolve(f.Path)
	if rerr != nil {
		rerr.Action = string(f.Action)
		return "", rerr
	}

	if r.navKey {
		switch f.Action {
		case models.ActionEquals, models.ActionNotEquals:
		default:
			return "", errf(f.Path, f.Action, "navigations support key equality only")
		}
	}

	switch f.Action {
	case models.ActionExists:
		if r.stringy() {
			return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", r.expr, r.expr), nil
		}
		return fmt.Sprintf("%s IS NOT NULL", r.expr), nil

	case models.ActionIsNull:
		return fmt.Sprintf("%s IS NULL", r.expr), nil

	case models.ActionIsNullOrEmpty:
		if r.stringy() {
			return fmt.Sprintf("(%s IS NULL OR %s = '')", r.expr, r.expr), nil
		}
		return fmt.Sprintf("%s IS NULL", r.expr), nil

	case models.ActionStartsWith, models.ActionContains, models.ActionEndsWith:
		if !r.stringy() {
			return "", errf(f.Path, f.Action, "substring match needs a text field, not %s", r.kind)
		}
		parts := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			pattern := EscapeLike(v)
			switch f.Action {
			case models.ActionStartsWith:
				pattern += "%"
			case models.ActionEndsWith:
				pattern = "%" + pattern
			default:
				pattern = "%" + pattern + "%"
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", r.expr, c.likeOp(), c.arg(pattern)))
		}
		return orClause(parts), nil

	case models.ActionEquals, models.ActionNotEquals:
		op := "="
		if f.Action == models.ActionNotEquals {
			op = "<>"
		}
		parts := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			val, err := parseValue(r, v)
			if err != nil {
				return "", errf(f.Path, f.Action, "%s", err)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", r.expr, op, c.arg(val)))
		}
		return orClause(parts), nil

	case models.ActionGreater, models.ActionGreaterEqual, models.ActionLess, models.ActionLessEqual:
		if !orderedComparable(r) {
			return "", errf(f.Path, f.Action, "no ordered comparison registered for %s values", r.kind)
		}
		op := orderedOps[f.Action]
		parts := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			val, err := parseValue(r, v)
			if err != nil {
				return "", errf(f.Path, f.Action, "%s", err)
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", r.expr, op, c.arg(val)))
		}
		return orClause(parts), nil
	}

	return "", errf(f.Path, f.Action, "unknown action")
}

func orClause(parts []string) string {
	if len(parts) == 1 {
		return "(" + parts[0] + ")"
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// orderedComparable reports whether a string value can be converted to an
// ordered comparable for the field's kind. Bool, uuid and enum fields have
// no registered conversion.
func orderedComparable(r resolved) bool {
	if r.composite {
		return true
	}
	switch r.kind {
	case schema.KindString, schema.KindInt, schema.KindFloat, schema.KindTime:
		return true
	}
	return false
}

// parseValue converts one raw comparison value to the field's kind. Enum
// values compare by parsed canonical value; uuids compare as uuids
// regardless of the textual form supplied.
func parseValue(r resolved, raw string) (any, error) {
	if r.composite {
		return raw, nil
	}

	switch r.kind {
	case schema.KindString:
		return raw, nil

	case schema.KindEnum:
		needle := strings.ToLower(strings.TrimSpace(raw))
		for _, v := range r.enum {
			if needle == v {
				return v, nil
			}
		}
		return nil, fmt.Errorf("%q is not a valid value (one of %s)", raw, strings.Join(r.enum, ", "))

	case schema.KindUUID:
		id, err := models.ParseID(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid uuid", raw)
		}
		return id, nil

	case schema.KindInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", raw)
		}
		return n, nil

	case schema.KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", raw)
		}
		return f, nil

	case schema.KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid bool", raw)
		}
		return b, nil

	case schema.KindTime:
		return parseTime(raw)
	}

	return nil, fmt.Errorf("unsupported field kind %s", r.kind)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid timestamp", raw)
}
