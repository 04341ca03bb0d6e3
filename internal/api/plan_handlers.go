package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rawblock/oblivrel/internal/config"
	"github.com/rawblock/oblivrel/internal/db"
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/planexec"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/internal/sketch"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// planRequest is the wire format for plan submission: named input sizes
// (public row counts only — never cell contents) and a linear sequence of
// operator stages. This demo endpoint builds fixture relations of the
// requested size server-side; a real deployment would instead receive
// secret shares over the peer transport (internal/peer) from each party.
type planRequest struct {
	Inputs map[string]int `json:"inputs" binding:"required"`
	Stages []stageSpec    `json:"stages" binding:"required"`
}

type stageSpec struct {
	Kind      string                `json:"kind"`
	Input     string                `json:"input"`
	Left      string                `json:"left"`
	Right     string                `json:"right"`
	Columns   []int                 `json:"columns"`
	Column    int                   `json:"column"`
	Target    int64                 `json:"target"`
	Op        secrel.Comparator     `json:"op"`
	TruncTo   int                   `json:"truncTo"`
	ColL      int                   `json:"colL"`
	ColR      int                   `json:"colR"`
	Mode      secrel.CompactionMode `json:"mode"`
	FixedSize int                   `json:"fixedSize"`
	MFLeft    int                   `json:"mfLeft"`
	MFRight   int                   `json:"mfRight"`
}

func buildPlanTree(inputs map[string]int, stages []stageSpec) (*planexec.Node, map[string]*relation.Relation, error) {
	fixtures := make(map[string]*relation.Relation, len(inputs))
	for name, n := range inputs {
		if n < 0 {
			return nil, nil, secrel.NewPlanError("plan", "negative row count for input %q", name)
		}
		r := relation.New(1, n)
		for i := 0; i < n; i++ {
			r.Columns[0][i] = mpc.NewInt(relation.DefaultWidth, int64(i), mpc.Public)
		}
		fixtures[name] = r
	}

	var cur *planexec.Node
	for i, s := range stages {
		switch s.Kind {
		case "project":
			cur = &planexec.Node{Kind: planexec.OpProject, Columns: s.Columns, Children: []*planexec.Node{resolveInput(cur, s.Input)}}
		case "filter":
			cur = &planexec.Node{
				Kind: planexec.OpFilter, Column: s.Column, Op: s.Op,
				Target:   mpc.NewInt(relation.DefaultWidth, s.Target, mpc.Public),
				Children: []*planexec.Node{resolveInput(cur, s.Input)},
			}
		case "pac_filter":
			cur = &planexec.Node{
				Kind: planexec.OpPACFilter, Column: s.Column, Op: s.Op, TruncTo: s.TruncTo,
				Target:   mpc.NewInt(relation.DefaultWidth, s.Target, mpc.Public),
				Children: []*planexec.Node{resolveInput(cur, s.Input)},
			}
		case "count":
			cur = &planexec.Node{Kind: planexec.OpCount, Children: []*planexec.Node{resolveInput(cur, s.Input)}}
		case "equi_join":
			cur = &planexec.Node{
				Kind: planexec.OpEquiJoin, ColL: s.ColL, ColR: s.ColR,
				Children: []*planexec.Node{planexec.Leaf(s.Left), planexec.Leaf(s.Right)},
			}
		case "index_equi_join":
			rowsL, rowsR := inputs[s.Left], inputs[s.Right]
			bucketCount := sketch.ChooseBucketCount(rowsL, rowsR, 8)
			mfL, mfR := s.MFLeft, s.MFRight
			if s.Mode == secrel.MF && mfL == 0 && mfR == 0 {
				plan := sketch.EstimateMF(rowsL, rowsR, bucketCount, 1.0)
				mfL, mfR = plan.MFLeft, plan.MFRight
			}
			cur = &planexec.Node{
				Kind: planexec.OpIndexEquiJoin, ColL: s.ColL, ColR: s.ColR,
				Mode: s.Mode, FixedSize: s.FixedSize, MFLeft: mfL, MFRight: mfR,
				IndexL:   evenBuckets(rowsL, bucketCount),
				IndexR:   evenBuckets(rowsR, bucketCount),
				Children: []*planexec.Node{planexec.Leaf(s.Left), planexec.Leaf(s.Right)},
			}
		default:
			return nil, nil, secrel.NewPlanError("plan", "unknown stage kind %q at index %d", s.Kind, i)
		}
	}
	if cur == nil {
		return nil, nil, secrel.NewPlanError("plan", "plan has no stages")
	}
	return cur, fixtures, nil
}

// evenBuckets partitions n rows into bucketCount contiguous inclusive
// ranges of roughly equal size, covering [0,n) exactly once. Bucket
// boundaries are derived only from the public row count n, never from
// relation contents.
func evenBuckets(n, bucketCount int) []secrel.BucketRange {
	if bucketCount <= 0 {
		bucketCount = 1
	}
	out := make([]secrel.BucketRange, bucketCount)
	size := n / bucketCount
	rem := n % bucketCount
	start := 0
	for i := 0; i < bucketCount; i++ {
		width := size
		if i < rem {
			width++
		}
		out[i] = secrel.BucketRange{Start: start, End: start + width - 1}
		start += width
	}
	return out
}

func resolveInput(prev *planexec.Node, name string) *planexec.Node {
	if prev != nil {
		return prev
	}
	return planexec.Leaf(name)
}

// POST /api/v1/plans
func (h *APIHandler) handleSubmitPlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	root, fixtures, err := buildPlanTree(req.Inputs, req.Stages)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	planID := uuid.New().String()
	plan := &planexec.Plan{ID: planID, Root: root}
	runner := planexec.NewRunner(fixtures)
	h.runs.Put(planID, runner)

	var opSequence []string
	runner.OnNodeDone(func(kind planexec.OpKind, rows int) {
		opSequence = append(opSequence, string(kind))
		if h.wsHub != nil {
			payload, _ := json.Marshal(gin.H{"type": "plan_progress", "planId": planID, "op": kind, "rows": rows})
			h.wsHub.Broadcast(payload)
		}
		if config.DebugLog() {
			fmt.Printf("plan %s: completed %s (%d rows)\n", planID, kind, rows)
		}
	})

	out, elapsed, runErr := runner.Run(plan)

	record := db.PlanRun{
		PlanID:      planID,
		OpSequence:  opSequence,
		BucketCount: 0,
		DurationMS:  elapsed.Milliseconds(),
	}
	if runErr != nil {
		record.Error = runErr.Error()
	} else {
		record.OutputRows = out.NumRows()
	}
	if h.dbStore != nil {
		if err := h.dbStore.SavePlanRun(context.Background(), record); err != nil {
			c.Error(err)
		}
	}

	if runErr != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": runErr.Error(), "planId": planID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"planId":     planID,
		"outputRows": out.NumRows(),
		"durationMs": elapsed.Milliseconds(),
		"ops":        opSequence,
	})
}

// GET /api/v1/plans/:id
func (h *APIHandler) handleGetPlanProgress(c *gin.Context) {
	id := c.Param("id")
	runner, ok := h.runs.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan not found"})
		return
	}
	p := runner.Progress()
	c.JSON(http.StatusOK, gin.H{
		"planId":         id,
		"nodesTotal":     p.NodesTotal,
		"nodesCompleted": p.NodesCompleted,
	})
}

// GET /api/v1/plans
func (h *APIHandler) handleListPlanRuns(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	runs, total, err := h.dbStore.ListPlanRuns(c.Request.Context(), 1, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs, "totalCount": total})
}
