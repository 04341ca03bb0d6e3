package planexec

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/rawblock/oblivrel/internal/ops"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// Progress is a snapshot of a running plan, safe to read concurrently with
// execution.
type Progress struct {
	NodesTotal     int64
	NodesCompleted int64
}

// Runner executes one Plan against a table of named input relations.
// Atomic counters let Progress be polled from another goroutine without a
// lock.
type Runner struct {
	inputs map[string]*relation.Relation

	nodesTotal     atomic.Int64
	nodesCompleted atomic.Int64

	onNodeDone func(kind OpKind, rows int)
}

// NewRunner builds a Runner over the given named input relations.
func NewRunner(inputs map[string]*relation.Relation) *Runner {
	return &Runner{inputs: inputs}
}

// OnNodeDone registers a callback fired after each node finishes, carrying
// its kind and output row count (both public). Used by cmd/party to print
// per-stage progress and by internal/api to push websocket updates.
func (r *Runner) OnNodeDone(fn func(kind OpKind, rows int)) {
	r.onNodeDone = fn
}

// Progress returns a snapshot of how many plan nodes have completed.
func (r *Runner) Progress() Progress {
	return Progress{
		NodesTotal:     r.nodesTotal.Load(),
		NodesCompleted: r.nodesCompleted.Load(),
	}
}

// Run executes the plan to completion and returns its output relation and
// wall-clock duration, or the first error any node returned.
func (r *Runner) Run(p *Plan) (*relation.Relation, time.Duration, error) {
	r.nodesTotal.Store(int64(nodeCount(p.Root)))
	r.nodesCompleted.Store(0)

	start := time.Now()
	out, err := r.exec(p.Root)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, err
	}
	log.Printf("plan %s: %d nodes, %d output rows, %s", p.ID, r.nodesTotal.Load(), out.NumRows(), elapsed)
	return out, elapsed, nil
}

func (r *Runner) exec(n *Node) (*relation.Relation, error) {
	var out *relation.Relation
	var err error

	switch n.Kind {
	case OpLeaf:
		rel, ok := r.inputs[n.LeafName]
		if !ok {
			return nil, secrel.NewPlanError("plan", "unknown leaf input %q", n.LeafName)
		}
		out = rel

	case OpProject:
		var in *relation.Relation
		if in, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		out, err = ops.Project(in, n.Columns)

	case OpFilter:
		var in *relation.Relation
		if in, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		out, err = ops.Filter(in, n.Column, n.Target, n.Op)

	case OpPACFilter:
		var in *relation.Relation
		if in, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		out, err = ops.PACFilter(in, n.Column, n.Target, n.Op, n.TruncTo)

	case OpCount:
		var in *relation.Relation
		if in, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		out = ops.Count(in)

	case OpEquiJoin:
		var l, rr *relation.Relation
		if l, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		if rr, err = r.execChild(n, 1); err != nil {
			return nil, err
		}
		out, err = ops.EquiJoin(l, rr, n.ColL, n.ColR)

	case OpIndexEquiJoin:
		var l, rr *relation.Relation
		if l, err = r.execChild(n, 0); err != nil {
			return nil, err
		}
		if rr, err = r.execChild(n, 1); err != nil {
			return nil, err
		}
		out, err = ops.IndexEquiJoin(l, rr, n.IndexL, n.IndexR, ops.IndexEquiJoinParams{
			ColL: n.ColL, ColR: n.ColR, Mode: n.Mode,
			FixedSize: n.FixedSize, MFLeft: n.MFLeft, MFRight: n.MFRight,
		})

	default:
		return nil, fmt.Errorf("planexec: unknown op kind %q", n.Kind)
	}

	if err != nil {
		return nil, err
	}

	r.nodesCompleted.Add(1)
	if r.onNodeDone != nil {
		r.onNodeDone(n.Kind, out.NumRows())
	}
	return out, nil
}

func (r *Runner) execChild(n *Node, i int) (*relation.Relation, error) {
	if i >= len(n.Children) {
		return nil, secrel.NewPlanError("plan", "node %q missing child %d", n.Kind, i)
	}
	return r.exec(n.Children[i])
}
