package filter

import "github.com/corralhq/corral/internal/models"

// compileSorts resolves the requested ordering, or falls back to ascending
// primary key order when none is given. The fallback guarantees at least
// one sort key, which neighbor navigation relies on.
func (c *compiler) compileSorts(sorts []models.SortSpec) ([]SortKey, error) {
	if len(sorts) == 0 {
		keyFields := c.meta.Keys()
		keys := make([]SortKey, 0, len(keyFields))
		for _, k := range keyFields {
			keys = append(keys, SortKey{Expr: c.meta.Alias + "." + k.Column})
		}
		return keys, nil
	}

	keys := make([]SortKey, 0, len(sorts))
	for _, s := range sorts {
		r, err := c.resolve(s.Path)
		if err != nil {
			return nil, err
		}
		if r.navKey {
			return nil, &Error{Path: s.Path, Reason: "cannot sort by a navigation"}
		}
		keys = append(keys, SortKey{Expr: r.expr, Desc: s.Descending})
	}
	return keys, nil
}
