package relation

import (
	"fmt"
	"strings"
)

// Print reveals and prints every cell and flag, labeled. Non-oblivious by
// definition — test-only. Never call this on a relation holding real
// secret-shared data.
func (r *Relation) Print(label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", label)
	for row := 0; row < r.NumRows(); row++ {
		for col := 0; col < r.NumCols(); col++ {
			fmt.Fprintf(&b, "%d\t", r.Columns[col][row].Reveal())
		}
		fmt.Fprintf(&b, "| Flag: %v\n", r.Flags[row].Reveal())
	}
	return b.String()
}
