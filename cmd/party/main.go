// Command party is the uniform demo driver: it takes a party id and a
// port, rendezvous with its counterpart over internal/peer, runs a small
// index-equi-join plan over locally constructed fixture relations of the
// requested sizes, and reports (a) total memory across plan nodes in
// bytes, (b) wall time in milliseconds. Real input data, bucket
// boundaries, and party-specific secret shares are supplied by the
// collaborator secure-arithmetic backend — this driver only exercises the
// oblivious operator layer with public-size fixtures.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/rawblock/oblivrel/internal/config"
	"github.com/rawblock/oblivrel/internal/mpc"
	"github.com/rawblock/oblivrel/internal/peer"
	"github.com/rawblock/oblivrel/internal/planexec"
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/internal/sketch"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

func main() {
	if len(os.Args) < 5 {
		log.Fatalf("usage: %s <party_id 1|2> <port> <sizeL> <sizeR>", os.Args[0])
	}
	partyID := mustAtoi(os.Args[1], "party_id")
	port := os.Args[2]
	sizeL := mustAtoi(os.Args[3], "sizeL")
	sizeR := mustAtoi(os.Args[4], "sizeR")

	role := peer.PartyAlice
	if partyID == 2 {
		role = peer.PartyBob
	}
	addr := "127.0.0.1:" + port

	bucketCount := sketch.ChooseBucketCount(sizeL, sizeR, 8)
	cfg := peer.Config{Role: role, Address: addr}

	var conn *peer.Conn
	var err error
	if role == peer.PartyAlice {
		conn, err = peer.Listen(cfg)
	} else {
		conn, err = peer.Dial(cfg)
	}
	if err != nil {
		log.Fatalf("party %d: handshake failed: %v", partyID, err)
	}
	defer conn.Close()

	planID := fmt.Sprintf("party-demo-%d-%d", sizeL, sizeR)
	if role == peer.PartyAlice {
		if err := conn.SendHello(peer.Hello{PlanID: planID, BucketCount: bucketCount}); err != nil {
			log.Fatalf("party %d: send hello: %v", partyID, err)
		}
	} else {
		hello, err := conn.RecvHello()
		if err != nil {
			log.Fatalf("party %d: recv hello: %v", partyID, err)
		}
		planID, bucketCount = hello.PlanID, hello.BucketCount
	}

	left := fixtureRelation(sizeL)
	right := fixtureRelation(sizeR)

	indexL := evenBuckets(sizeL, bucketCount)
	indexR := evenBuckets(sizeR, bucketCount)
	mfPlan := sketch.EstimateMF(sizeL, sizeR, bucketCount, 1.0)

	root := &planexec.Node{
		Kind:     planexec.OpIndexEquiJoin,
		ColL:     0, ColR: 0,
		Mode:     secrel.MF,
		MFLeft:   mfPlan.MFLeft,
		MFRight:  mfPlan.MFRight,
		IndexL:   indexL,
		IndexR:   indexR,
		Children: []*planexec.Node{planexec.Leaf("left"), planexec.Leaf("right")},
	}
	plan := &planexec.Plan{ID: planID, Root: root}

	runner := planexec.NewRunner(map[string]*relation.Relation{"left": left, "right": right})
	var totalMemory int
	runner.OnNodeDone(func(kind planexec.OpKind, rows int) {
		if config.DebugLog() {
			log.Printf("party %d: node %s completed, %d rows", partyID, kind, rows)
		}
	})

	start := time.Now()
	out, _, err := runner.Run(plan)
	elapsed := time.Since(start)
	if err != nil {
		log.Fatalf("party %d: plan failed: %v", partyID, err)
	}
	totalMemory = left.MemoryBytes() + right.MemoryBytes() + out.MemoryBytes()

	fmt.Printf("memory_bytes=%d\n", totalMemory)
	fmt.Printf("wall_time_ms=%d\n", elapsed.Milliseconds())
}

// fixtureRelation builds a single-column relation of n rows with
// sequential public values, standing in for the party's real secret input
// — random data initialization is out of scope for this library; supplying
// it is the demo driver's job.
func fixtureRelation(n int) *relation.Relation {
	r := relation.New(1, n)
	for i := 0; i < n; i++ {
		r.Columns[0][i] = mpc.NewInt(relation.DefaultWidth, int64(i%7), mpc.Public)
	}
	return r
}

// evenBuckets partitions n rows into bucketCount contiguous inclusive
// ranges, the same scheme internal/api/plan_handlers.go uses for the HTTP
// demo surface.
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

func mustAtoi(s, name string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid %s %q: %v", name, s, err)
	}
	return v
}
