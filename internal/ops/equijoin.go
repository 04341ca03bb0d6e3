package ops

import (
	"github.com/rawblock/oblivrel/internal/relation"
	"github.com/rawblock/oblivrel/pkg/secrel"
)

// EquiJoin computes the full m*n Cartesian equi-join of l and r on the
// given columns. Row l[i] concatenated with r[j] lands at output index
// i*n+j regardless of whether the join condition holds; the output flag is
// (l[colL][i]==r[colR][j]) AND l.flag[i] AND r.flag[j]. No reveal occurs —
// m, n, and the column indices are all public.
func EquiJoin(l, r *relation.Relation, colL, colR int) (*relation.Relation, error) {
	if colL < 0 || colL >= l.NumCols() {
		return nil, secrel.NewPlanError("equi_join", "invalid left column index %d", colL)
	}
	if colR < 0 || colR >= r.NumCols() {
		return nil, secrel.NewPlanError("equi_join", "invalid right column index %d", colR)
	}

	m, n := l.NumRows(), r.NumRows()
	out := relation.New(l.NumCols()+r.NumCols(), m*n)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			row := i*n + j
			for k := 0; k < l.NumCols(); k++ {
				out.Columns[k][row] = l.Columns[k][i]
			}
			for k := 0; k < r.NumCols(); k++ {
				out.Columns[l.NumCols()+k][row] = r.Columns[k][j]
			}
			joined := l.Columns[colL][i].Eq(r.Columns[colR][j]).And(l.Flags[i]).And(r.Flags[j])
			out.Flags[row] = joined
		}
	}
	return out, nil
}
