// Package similarity scores how alike the nodes of two pipeline graphs are.
//
// # Base Similarity
//
// [Base] compares every node of one graph with every node of the other.
// Two records score 1 when their primitive paths are identical and 0.5 when
// only the family (third path segment, e.g. "data_cleaning") matches. Nodes
// sitting at the same structural position ("steps.3" vs "G1.steps.3") get a
// 0.05 bonus. Nodes holding several records (after merges) average over all
// record pairs.
//
// # Similarity Flooding
//
// [Flood] refines the base matrix along graph structure. It builds a pairwise
// connectivity graph ([PCG]) whose vertices are node pairs (a, b) and whose
// edges mirror pairs of edges a→a', b→b' of the same edge type. Each vertex
// spreads its score to its neighbours, split evenly among neighbours reached
// through the same edge type, and the score vector is renormalized to a
// maximum of 1 after every round:
//
//	v ← α·(A·v) + (1-α)·v
//	v ← v / max(v)
//
// The number of rounds is fixed; there is no convergence test, so results
// are reproducible for a given iteration count.
//
// When one graph has no edges the PCG is empty and [Flood] returns
// [ErrEmptyPCG]; callers are expected to keep the base matrix.
package similarity
