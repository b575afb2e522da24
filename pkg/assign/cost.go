package assign

import (
	"gonum.org/v1/gonum/mat"
)

// Infinity is the cost of forbidden cells in the padded blocks. It only
// needs to exceed any sum of legal costs.
const Infinity = 1000.0

// Default per-node insertion and deletion costs.
const (
	DefaultAddCost = 0.4
	DefaultDelCost = 0.4
)

// EditCostMatrix builds the square edit cost matrix for sim. Row i < n1 is
// node i of the first graph; column j < n2 is node j of the second graph.
// Column n2+i is the insertion slot of row i and row n1+j the deletion slot
// of column j.
func EditCostMatrix(sim mat.Matrix, addCost, delCost float64) *mat.Dense {
	n1, n2 := sim.Dims()
	n := n1 + n2
	cost := mat.NewDense(n, n, nil)
	top := mat.Max(sim)

	for i := range n1 {
		for j := range n2 {
			cost.Set(i, j, top-sim.At(i, j))
		}
		for k := range n1 {
			c := Infinity
			if k == i {
				c = addCost
			}
			cost.Set(i, n2+k, c)
		}
	}
	for j := range n2 {
		for k := range n2 {
			c := Infinity
			if k == j {
				c = delCost
			}
			cost.Set(n1+j, k, c)
		}
	}
	return cost
}
