package ns

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func table(t *testing.T, entries ...Entry) *Namespace {
	t.Helper()
	n := New()
	for _, e := range entries {
		if err := n.Set(e); err != nil {
			t.Fatal(err)
		}
	}
	return n
}

func TestMerge(t *testing.T) {
	var (
		a1 = blobEntry("a", 1)
		a2 = blobEntry("a", 2)
		a3 = blobEntry("a", 3)
		b1 = blobEntry("b", 1)
		c1 = nsEntry("c", 1)
		d1 = blobEntry("d", 1)
		d2 = nsEntry("d", 2)
	)

	cases := []struct {
		name          string
		base          *Namespace
		ours, theirs  *Namespace
		want          *Namespace
		wantConflicts []string
	}{
		{
			name:   "no changes",
			base:   table(t, a1, b1),
			ours:   table(t, a1, b1),
			theirs: table(t, a1, b1),
			want:   table(t, a1, b1),
		},
		{
			name:   "disjoint adds union",
			base:   table(t),
			ours:   table(t, a1),
			theirs: table(t, b1, c1),
			want:   table(t, a1, b1, c1),
		},
		{
			name:   "one-sided update wins",
			base:   table(t, a1, b1),
			ours:   table(t, a2, b1),
			theirs: table(t, a1, b1),
			want:   table(t, a2, b1),
		},
		{
			name:   "one-sided delete wins",
			base:   table(t, a1, b1),
			ours:   table(t, a1, b1),
			theirs: table(t, b1),
			want:   table(t, b1),
		},
		{
			name:   "identical updates coalesce",
			base:   table(t, a1),
			ours:   table(t, a2),
			theirs: table(t, a2),
			want:   table(t, a2),
		},
		{
			name:          "divergent updates conflict",
			base:          table(t, a1, b1),
			ours:          table(t, a2, b1),
			theirs:        table(t, a3, b1),
			want:          table(t, b1),
			wantConflicts: []string{"a"},
		},
		{
			name:          "add/add with different kinds conflicts",
			base:          table(t),
			ours:          table(t, d1),
			theirs:        table(t, d2),
			want:          table(t),
			wantConflicts: []string{"d"},
		},
		{
			name:          "update vs delete conflicts",
			base:          table(t, a1),
			ours:          table(t, a2),
			theirs:        table(t),
			want:          table(t),
			wantConflicts: []string{"a"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, conflicts := Merge(c.base, c.ours, c.theirs)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("merged table mismatch (-want +got):\n%s", diff)
			}
			var names []string
			for _, conflict := range conflicts {
				names = append(names, conflict.Name)
			}
			if diff := cmp.Diff(c.wantConflicts, names); diff != "" {
				t.Errorf("conflicts mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeCommutes(t *testing.T) {
	// Swapping ours and theirs must produce the same table when there
	// are no conflicts: replicas converge regardless of merge direction.
	var (
		base   = table(t, blobEntry("a", 1))
		ours   = table(t, blobEntry("a", 1), blobEntry("b", 1))
		theirs = table(t, blobEntry("a", 2), nsEntry("c", 1))
	)

	m1, conflicts := Merge(base, ours, theirs)
	if len(conflicts) != 0 {
		t.Fatalf("unexpected conflicts: %v", conflicts)
	}
	m2, _ := Merge(base, theirs, ours)
	if diff := cmp.Diff(m1, m2); diff != "" {
		t.Errorf("merge is not symmetric (-ours+theirs +theirs+ours):\n%s", diff)
	}
}
