package ns

import "bytes"

// A Conflict reports a divergent change to one entry name found while
// merging two namespace tables. Nil fields mean the entry was absent on
// that side.
type Conflict struct {
	Name   string
	Base   *Entry
	Ours   *Entry
	Theirs *Entry
}

// Merge performs a three-way structural merge of namespace entry tables.
//
// Encrypted namespace objects cannot be merged textually - every
// re-encryption changes all the bytes - so replicas that diverge on the
// same namespace reconcile the decrypted entry tables instead. The rules
// are the usual three-way ones, applied member-wise:
//
//   - a name changed (added, updated, or removed) on only one side takes
//     that side's state;
//   - a name changed identically on both sides coalesces;
//   - a name changed differently on both sides is a Conflict, left out of
//     the merged table for the caller to resolve.
//
// The merged table is returned along with any conflicts, in name order.
func Merge(base, ours, theirs *Namespace) (*Namespace, []Conflict) {
	var (
		merged    = New()
		conflicts []Conflict
	)

	for _, name := range nameUnion(base, ours, theirs) {
		b := lookup(base, name)
		o := lookup(ours, name)
		t := lookup(theirs, name)

		var keep *Entry
		switch {
		case entryEqual(o, t): // same state both sides (possibly both deleted)
			keep = o
		case entryEqual(o, b): // only they changed it
			keep = t
		case entryEqual(t, b): // only we changed it
			keep = o
		default:
			conflicts = append(conflicts, Conflict{Name: name, Base: b, Ours: o, Theirs: t})
			continue
		}
		if keep != nil {
			merged.Entries = append(merged.Entries, *keep)
		}
	}

	return merged, conflicts
}

// Union of entry names, in order. Each input is already sorted.
func nameUnion(tables ...*Namespace) []string {
	var names []string
	for _, n := range tables {
		if n == nil {
			continue
		}
		for _, e := range n.Entries {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	// Insertion sort keeps this simple; tables are small and mostly ordered.
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	out := names[:1]
	for _, name := range names[1:] {
		if name != out[len(out)-1] {
			out = append(out, name)
		}
	}
	return out
}

func lookup(n *Namespace, name string) *Entry {
	if n == nil {
		return nil
	}
	e, ok := n.Get(name)
	if !ok {
		return nil
	}
	return &e
}

func entryEqual(a, b *Entry) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Name == b.Name &&
		a.Kind == b.Kind &&
		bytes.Equal(a.Ref, b.Ref) &&
		bytes.Equal(a.Salt, b.Salt)
}
