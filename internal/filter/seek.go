package filter

import (
	"fmt"
	"strings"
)

// Seek extends the compiled WHERE with the neighbor predicate: rows
// strictly after (forward) or strictly before the current record's sort-key
// tuple under the compiled ordering. Ties across every key fall through to
// the last branch, which excludes the current record by primary key. Key
// values holding NULL never match any branch, so rows with NULL sort keys
// are silently absent as neighbors.
//
// Returns the full WHERE clause and its argument list; q.Args is not
// modified.
func (q *Compiled) Seek(keyVals []any, pkExprs []string, pkVals []any, forward bool) (string, []any, error) {
	if len(keyVals) != len(q.Keys) {
		return "", nil, fmt.Errorf("seek: %d key values for %d sort keys", len(keyVals), len(q.Keys))
	}
	if len(pkExprs) == 0 || len(pkExprs) != len(pkVals) {
		return "", nil, fmt.Errorf("seek: primary key exprs and values must align")
	}

	args := append([]any{}, q.Args...)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	disjuncts := make([]string, 0, len(q.Keys)+1)
	for i, k := range q.Keys {
		conj := make([]string, 0, i+1)
		for j := 0; j < i; j++ {
			conj = append(conj, fmt.Sprintf("%s = %s", q.Keys[j].Expr, arg(keyVals[j])))
		}

		op := "<"
		if k.Desc != forward {
			op = ">"
		}
		conj = append(conj, fmt.Sprintf("%s %s %s", k.Expr, op, arg(keyVals[i])))
		disjuncts = append(disjuncts, "("+strings.Join(conj, " AND ")+")")
	}

	// Same key tuple, different record.
	tie := make([]string, 0, len(q.Keys)+1)
	for j := range q.Keys {
		tie = append(tie, fmt.Sprintf("%s = %s", q.Keys[j].Expr, arg(keyVals[j])))
	}
	excl := make([]string, 0, len(pkExprs))
	for i := range pkExprs {
		excl = append(excl, fmt.Sprintf("%s = %s", pkExprs[i], arg(pkVals[i])))
	}
	tie = append(tie, "NOT ("+strings.Join(excl, " AND ")+")")
	disjuncts = append(disjuncts, "("+strings.Join(tie, " AND ")+")")

	where := q.Where + " AND (" + strings.Join(disjuncts, " OR ") + ")"
	return where, args, nil
}
