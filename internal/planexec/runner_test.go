package planexec

import (
	"testing"

	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

func setCol(r *relation.Relation, c int, vs ...int64) {
	for i, v := range vs {
		r.Columns[c][i] = mpc.NewInt(relation.DefaultWidth, v, mpc.Public)
	}
}

func TestRunnerFilterThenCount(t *testing.T) {
	in := relation.New(1, 4)
	setCol(in, 0, 1, 5, 3, 9)

	filter := &Node{
		Kind:   OpFilter,
		Column: 0,
		Target: mpc.NewInt(relation.DefaultWidth, 3, mpc.Public),
		Op:     secrel.Gt,
		Children: []*Node{Leaf("t")},
	}
	count := &Node{Kind: OpCount, Children: []*Node{filter}}
	plan := &Plan{ID: "p1", Root: count}

	var seen []OpKind
	r := NewRunner(map[string]*relation.Relation{"t": in})
	r.OnNodeDone(func(kind OpKind, rows int) { seen = append(seen, kind) })

	out, _, err := r.Run(plan)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := out.Columns[0][0].Reveal(); got != 2 {
		t.Fatalf("count = %d, want 2 (rows 5 and 9 exceed 3)", got)
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 node-done callbacks (leaf, filter, count), got %d: %v", len(seen), seen)
	}
	if p := r.Progress(); p.NodesCompleted != p.NodesTotal {
		t.Fatalf("progress = %+v, expected completed == total after Run", p)
	}
}

func TestRunnerUnknownLeaf(t *testing.T) {
	r := NewRunner(map[string]*relation.Relation{})
	plan := &Plan{ID: "p2", Root: Leaf("missing")}
	if _, _, err := r.Run(plan); err == nil {
		t.Fatal("expected error for unknown leaf input")
	}
}
