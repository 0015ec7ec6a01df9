package filter

import (
	"fmt"
	"strings"

	"github.com/corralhq/corral/internal/schema"
)

// resolved is the outcome of translating one field path: a SQL expression
// plus the metadata the action compiler needs.
type resolved struct {
	expr     string
	kind     schema.Kind
	enum     []string
	nullable bool
	// composite marks an array-literal concatenation; it behaves as a
	// string for every action.
	composite bool
	// navKey marks a terminal navigation segment: the expression is the
	// foreign key column and only key equality applies.
	navKey bool
}

func (r resolved) stringy() bool {
	return r.composite || r.kind == schema.KindString
}

// resolve translates a dotted or array-literal field path into a SQL
// expression, adding joins for traversed navigations. Rejections are client
// errors scoped to this path.
func (c *compiler) resolve(path string) (resolved, *Error) {
	path = strings.TrimSpace(path)

	if strings.HasPrefix(path, "[") {
		return c.resolveComposite(path)
	}

	segments := strings.Split(path, ".")

	// Walk navigation hops up to the terminal segment.
	parentAlias := c.meta.Alias
	var nav *schema.NavMeta
	for _, seg := range segments[:len(segments)-1] {
		var next *schema.NavMeta
		var ok bool
		if nav == nil {
			next, ok = c.meta.Nav(seg)
		} else {
			next, ok = nav.Nav(seg)
		}
		if !ok {
			return resolved{}, &Error{Path: path, Reason: fmt.Sprintf("%q is not a navigation", seg)}
		}
		c.ensureJoin(parentAlias, next)
		parentAlias = next.Alias
		nav = next
	}

	last := segments[len(segments)-1]
	if last == "" {
		return resolved{}, &Error{Path: path, Reason: "empty path segment"}
	}

	// Terminal field on the entity itself or on the traversed target.
	if nav == nil {
		if f, ok := c.meta.Field(last); ok {
			if !f.Filterable {
				return resolved{}, &Error{Path: path, Reason: fmt.Sprintf("field %q is not filterable", last)}
			}
			return resolved{
				expr:     c.meta.Alias + "." + f.Column,
				kind:     f.Kind,
				enum:     f.Enum,
				nullable: f.Nullable,
			}, nil
		}
	} else {
		if f, ok := nav.Field(last); ok {
			if !f.Filterable {
				return resolved{}, &Error{Path: path, Reason: fmt.Sprintf("field %q is not filterable", last)}
			}
			return resolved{
				expr:     nav.Alias + "." + f.Column,
				kind:     f.Kind,
				enum:     f.Enum,
				nullable: f.Nullable || !nav.Required,
			}, nil
		}
	}

	// Terminal navigation: compared by key through its foreign key column,
	// no join needed.
	var term *schema.NavMeta
	var ok bool
	if nav == nil {
		term, ok = c.meta.Nav(last)
	} else {
		term, ok = nav.Nav(last)
	}
	if ok {
		return resolved{
			expr:     parentAlias + "." + term.FKColumn,
			kind:     schema.KindUUID,
			nullable: !term.Required,
			navKey:   true,
		}, nil
	}

	return resolved{}, &Error{Path: path, Reason: fmt.Sprintf("unknown field %q", last)}
}

// resolveComposite handles the array-literal syntax [a,b,"lit"]: resolved
// sub-paths and quoted literals concatenate into one string expression.
// Non-string sub-paths are stringified; null elements concatenate as empty.
func (c *compiler) resolveComposite(path string) (resolved, *Error) {
	if !strings.HasSuffix(path, "]") {
		return resolved{}, &Error{Path: path, Reason: "unterminated array literal"}
	}

	elements, err := splitElements(path[1 : len(path)-1])
	if err != nil {
		return resolved{}, &Error{Path: path, Reason: err.Error()}
	}
	if len(elements) == 0 {
		return resolved{}, &Error{Path: path, Reason: "empty array literal"}
	}

	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		el = strings.TrimSpace(el)

		if len(el) >= 2 && strings.HasPrefix(el, `"`) && strings.HasSuffix(el, `"`) {
			parts = append(parts, c.arg(el[1:len(el)-1]))
			continue
		}

		r, rerr := c.resolve(el)
		if rerr != nil {
			rerr.Path = path
			return resolved{}, rerr
		}

		switch {
		case r.kind == schema.KindString && !r.composite && !r.nullable:
			parts = append(parts, r.expr)
		case r.kind == schema.KindString && !r.composite:
			parts = append(parts, fmt.Sprintf("COALESCE(%s, '')", r.expr))
		case r.composite:
			parts = append(parts, r.expr)
		default:
			parts = append(parts, fmt.Sprintf("COALESCE(%s::text, '')", r.expr))
		}
	}

	return resolved{
		expr:      "(" + strings.Join(parts, " || ") + ")",
		kind:      schema.KindString,
		composite: true,
	}, nil
}

// splitElements splits the inside of an array literal on commas, honoring
// quoted spans and nested brackets.
func splitElements(s string) ([]string, error) {
	var out []string
	var buf strings.Builder
	depth := 0
	inQuote := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			buf.WriteRune(r)
		case inQuote:
			buf.WriteRune(r)
		case r == '[':
			depth++
			buf.WriteRune(r)
		case r == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced brackets")
			}
			buf.WriteRune(r)
		case r == ',' && depth == 0:
			out = append(out, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}

	if buf.Len() > 0 || len(out) > 0 {
		out = append(out, buf.String())
	}
	return out, nil
}
