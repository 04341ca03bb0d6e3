// Package planexec composes the operators of internal/ops into a tree and
// runs it to completion, tracking progress with atomic counters read
// concurrently with execution, plus an optional callback fired as each
// node finishes. A plan is a tree of operator nodes, each internal node's
// inputs the outputs of its children.
package planexec

import (
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// OpKind names a plan node's operator.
type OpKind string

const (
	OpLeaf          OpKind = "leaf"
	OpProject       OpKind = "project"
	OpFilter        OpKind = "filter"
	OpPACFilter     OpKind = "pac_filter"
	OpCount         OpKind = "count"
	OpEquiJoin      OpKind = "equi_join"
	OpIndexEquiJoin OpKind = "index_equi_join"
)

// Node is one operator in a plan tree. Exactly the fields relevant to Kind
// are read at execution time; the rest are zero. A Leaf node carries no
// children and supplies its relation directly via LeafName, resolved
// against the Runner's input table at execution time.
type Node struct {
	Kind     OpKind
	Children []*Node

	LeafName string // OpLeaf

	Columns []int // OpProject

	Column  int               // OpFilter, OpPACFilter
	Target  mpc.Int           // OpFilter, OpPACFilter
	Op      secrel.Comparator // OpFilter, OpPACFilter
	TruncTo int               // OpPACFilter

	ColL, ColR int // OpEquiJoin, OpIndexEquiJoin

	IndexL, IndexR  []secrel.BucketRange // OpIndexEquiJoin
	Mode            secrel.CompactionMode // OpIndexEquiJoin
	FixedSize       int                   // OpIndexEquiJoin
	MFLeft, MFRight int                   // OpIndexEquiJoin
}

// Leaf constructs a reference to one of the Runner's named input relations.
func Leaf(name string) *Node { return &Node{Kind: OpLeaf, LeafName: name} }

// Plan is a named, rooted operator tree plus a stable identifier for
// audit logging (internal/db.PlanRun.PlanID).
type Plan struct {
	ID   string
	Root *Node
}

// nodeCount returns the number of nodes in the tree rooted at n, used to
// size the Runner's progress counter before execution starts.
func nodeCount(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += nodeCount(c)
	}
	return total
}
