package assign

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotSquare is returned for cost matrices with differing dimensions.
	ErrNotSquare = errors.New("cost matrix is not square")

	// ErrInvalidCost is returned when the cost matrix holds NaN or -Inf.
	ErrInvalidCost = errors.New("cost matrix contains NaN or -Inf")

	// ErrInfeasible is returned when no finite-cost perfect matching exists.
	ErrInfeasible = errors.New("cost matrix is infeasible")
)

// Solve returns, for every row of cost, the column assigned to it in a
// minimum-cost perfect matching. +Inf entries are allowed and mark cells
// that must not be used.
func Solve(cost mat.Matrix) ([]int, error) {
	nr, nc := cost.Dims()
	if nr != nc {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, nr, nc)
	}
	for i := range nr {
		for j := range nc {
			if c := cost.At(i, j); math.IsNaN(c) || math.IsInf(c, -1) {
				return nil, fmt.Errorf("%w: cell (%d, %d)", ErrInvalidCost, i, j)
			}
		}
	}

	s := newSolver(cost)
	for row := range nr {
		sink, minVal := s.augmentingPath(row)
		if sink < 0 {
			return nil, fmt.Errorf("%w: no augmenting path from row %d", ErrInfeasible, row)
		}
		s.updateDuals(row, minVal)
		s.augment(row, sink)
	}
	return s.col4row, nil
}

// Total returns the summed cost of an assignment returned by [Solve].
func Total(cost mat.Matrix, cols []int) float64 {
	var sum float64
	for i, j := range cols {
		sum += cost.At(i, j)
	}
	return sum
}

type solver struct {
	n    int
	cost mat.Matrix

	u, v     []float64
	shortest []float64
	path     []int
	col4row  []int
	row4col  []int
	seenRow  []bool
	seenCol  []bool
	remain   []int
}

func newSolver(cost mat.Matrix) *solver {
	n, _ := cost.Dims()
	s := &solver{
		n:        n,
		cost:     cost,
		u:        make([]float64, n),
		v:        make([]float64, n),
		shortest: make([]float64, n),
		path:     make([]int, n),
		col4row:  make([]int, n),
		row4col:  make([]int, n),
		seenRow:  make([]bool, n),
		seenCol:  make([]bool, n),
		remain:   make([]int, n),
	}
	for i := range n {
		s.path[i] = -1
		s.col4row[i] = -1
		s.row4col[i] = -1
	}
	return s
}

// augmentingPath runs a Dijkstra-like search over reduced costs from row i
// until it reaches an unassigned column. It returns that column (or -1 when
// every remaining column is unreachable) and the length of the path.
func (s *solver) augmentingPath(i int) (int, float64) {
	minVal := 0.0
	remaining := s.n
	for it := range s.n {
		// Reverse order makes a constant matrix resolve to the identity.
		s.remain[it] = s.n - it - 1
		s.seenRow[it] = false
		s.seenCol[it] = false
		s.shortest[it] = math.Inf(1)
	}

	sink := -1
	for sink == -1 {
		index := -1
		lowest := math.Inf(1)
		s.seenRow[i] = true

		for it := range remaining {
			j := s.remain[it]
			r := minVal + s.cost.At(i, j) - s.u[i] - s.v[j]
			if r < s.shortest[j] {
				s.path[j] = i
				s.shortest[j] = r
			}
			// Prefer a free column among equally short ones.
			if s.shortest[j] < lowest || (s.shortest[j] == lowest && s.row4col[j] == -1) {
				lowest = s.shortest[j]
				index = it
			}
		}

		minVal = lowest
		if math.IsInf(minVal, 1) {
			return -1, minVal
		}

		j := s.remain[index]
		if s.row4col[j] == -1 {
			sink = j
		} else {
			i = s.row4col[j]
		}
		s.seenCol[j] = true
		remaining--
		s.remain[index] = s.remain[remaining]
	}
	return sink, minVal
}

func (s *solver) updateDuals(row int, minVal float64) {
	s.u[row] += minVal
	for i := range s.n {
		if s.seenRow[i] && i != row {
			s.u[i] += minVal - s.shortest[s.col4row[i]]
		}
	}
	for j := range s.n {
		if s.seenCol[j] {
			s.v[j] -= minVal - s.shortest[j]
		}
	}
}

// augment flips the alternating path ending at sink.
func (s *solver) augment(row, sink int) {
	j := sink
	for {
		i := s.path[j]
		s.row4col[j] = i
		s.col4row[i], j = j, s.col4row[i]
		if i == row {
			return
		}
	}
}
