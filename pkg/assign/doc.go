// Package assign turns a similarity matrix into a node correspondence.
//
// [EditCostMatrix] pads an n1 x n2 similarity matrix into a square
// (n1+n2) x (n1+n2) cost matrix in which every node may either be
// substituted by a node of the other graph, inserted, or deleted:
//
//	          n2 cols            n1 cols
//	       +-----------------+------------------+
//	n1     | max(S) - S      | add on diagonal  |
//	rows   |                 | Infinity else    |
//	       +-----------------+------------------+
//	n2     | del on diagonal | 0                |
//	rows   | Infinity else   |                  |
//	       +-----------------+------------------+
//
// [Solve] finds a minimum-cost perfect matching with the shortest
// augmenting path method (Jonker-Volgenant style, as popularized by
// Crouse). Rows are processed in order and ties between columns are broken
// the same way on every run, so a cost matrix always yields the same
// assignment.
package assign
