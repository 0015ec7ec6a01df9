package schema

import (
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manipulator provides structural equality, hashing and field-by-field copy
// for one entity type. Eligible fields are every scalar except primary keys,
// navigation-owned foreign keys, protected fields and row timestamps.
// Navigations marked resolve-by-reference move by key: copy transfers the
// foreign key only, and the caller verifies the referenced record exists in
// the active domain before persisting.
type Manipulator[T any] struct {
	name   string
	fields []*Field[T]
	navs   []*Navigation[T]
}

// Process-wide cache of synthesized manipulators, keyed by descriptor name.
// Concurrent read/populate via insert-if-absent; never invalidated except
// through EvictManipulator.
var manipulators sync.Map

// ManipulatorFor returns the manipulator for a descriptor, synthesizing it
// on first use.
func ManipulatorFor[T any](d *Descriptor[T]) *Manipulator[T] {
	if v, ok := manipulators.Load(d.Name); ok {
		return v.(*Manipulator[T])
	}

	m := newManipulator(d)
	if v, loaded := manipulators.LoadOrStore(d.Name, m); loaded {
		return v.(*Manipulator[T])
	}
	return m
}

// EvictManipulator drops a cached manipulator by descriptor name.
func EvictManipulator(name string) {
	manipulators.Delete(name)
}

func newManipulator[T any](d *Descriptor[T]) *Manipulator[T] {
	m := &Manipulator[T]{name: d.Name}

	for i := range d.Fields {
		f := &d.Fields[i]
		if f.PrimaryKey || f.NavKey || f.Protected || f.RowTimestamp {
			continue
		}
		if f.Set == nil {
			continue
		}
		m.fields = append(m.fields, f)
	}

	for i := range d.Navs {
		if d.Navs[i].ResolveByRef {
			m.navs = append(m.navs, &d.Navs[i])
		}
	}

	return m
}

// Equal reports structural equality. Two nil records are equal, a nil
// against a non-nil is not; otherwise every eligible field and every
// resolve-by-reference key must match.
func (m *Manipulator[T]) Equal(a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	for _, f := range m.fields {
		if !valueEqual(f.Get(a), f.Get(b)) {
			return false
		}
	}

	for _, n := range m.navs {
		if !uuidPtrEqual(n.FK(a), n.FK(b)) {
			return false
		}
	}

	return true
}

// Hash folds every eligible field into a 64-bit FNV-1a sum. Records equal
// under Equal hash identically.
func (m *Manipulator[T]) Hash(rec *T) uint64 {
	h := fnv.New64a()
	if rec == nil {
		return h.Sum64()
	}

	for _, f := range m.fields {
		io.WriteString(h, f.Name)
		writeValue(h, f.Get(rec))
	}

	for _, n := range m.navs {
		io.WriteString(h, n.Name)
		if id := n.FK(rec); id != nil {
			h.Write(id[:])
		}
		h.Write([]byte{0})
	}

	return h.Sum64()
}

// CopyInto writes src's eligible fields and resolve-by-reference keys into
// dst. Primary keys, the domain reference, protected fields and timestamps
// on dst are left untouched, so copying a payload over a loaded record is a
// partial update. Copying twice is a no-op observable via Equal.
func (m *Manipulator[T]) CopyInto(src, dst *T) {
	if src == nil || dst == nil {
		return
	}

	for _, f := range m.fields {
		f.Set(dst, f.Get(src))
	}

	for _, n := range m.navs {
		if n.SetFK != nil {
			n.SetFK(dst, n.FK(src))
		}
	}
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// valueEqual compares two accessor results. Pointer kinds treat two nils as
// equal and nil against non-nil as unequal; times compare by instant.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case *time.Time:
		bv, ok := b.(*time.Time)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return av.Equal(*bv)
	case *int64:
		bv, ok := b.(*int64)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return *av == *bv
	case *float64:
		bv, ok := b.(*float64)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return *av == *bv
	case *string:
		bv, ok := b.(*string)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return *av == *bv
	case *bool:
		bv, ok := b.(*bool)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return *av == *bv
	case *uuid.UUID:
		bv, ok := b.(*uuid.UUID)
		if !ok {
			return false
		}
		return uuidPtrEqual(av, bv)
	default:
		return a == b
	}
}

// writeValue renders one accessor result into the hash, with a trailing
// separator so adjacent fields cannot collide.
func writeValue(h io.Writer, v any) {
	switch x := v.(type) {
	case string:
		io.WriteString(h, x)
	case bool:
		if x {
			h.Write([]byte{1})
		}
	case int64:
		fmt.Fprintf(h, "%d", x)
	case float64:
		fmt.Fprintf(h, "%g", x)
	case uuid.UUID:
		h.Write(x[:])
	case time.Time:
		fmt.Fprintf(h, "%d", x.UnixNano())
	case *string:
		if x != nil {
			io.WriteString(h, *x)
		}
	case *bool:
		if x != nil && *x {
			h.Write([]byte{1})
		}
	case *int64:
		if x != nil {
			fmt.Fprintf(h, "%d", *x)
		}
	case *float64:
		if x != nil {
			fmt.Fprintf(h, "%g", *x)
		}
	case *uuid.UUID:
		if x != nil {
			h.Write(x[:])
		}
	case *time.Time:
		if x != nil {
			fmt.Fprintf(h, "%d", x.UnixNano())
		}
	default:
		fmt.Fprintf(h, "%v", x)
	}
	h.Write([]byte{0})
}
