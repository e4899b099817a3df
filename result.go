package graphstreams

import "fmt"

// A ResultKind tells how a query answer should be read.
type ResultKind int

const (
	// ResultExact marks an answer that is correct whenever it is returned.
	ResultExact ResultKind = iota

	// ResultEstimate marks an answer carrying a relative error bound that
	// holds with the probability guaranteed by the producing sketch.
	ResultEstimate

	// ResultStructure marks an answer that is an edge set rather than a
	// scalar.
	ResultStructure
)

// String implements fmt.Stringer.
func (k ResultKind) String() string {
	switch k {
	case ResultExact:
		return "exact"
	case ResultEstimate:
		return "estimate"
	case ResultStructure:
		return "structure"
	}

	return fmt.Sprintf("ResultKind(%d)", int(k))
}

// A Result is a query answer tagged with how much trust it deserves.
// Scalar answers carry a value and, for estimates, the relative error the
// producing sketch was configured for. Structural answers carry an edge
// set, and their Value is its size.
type Result struct {
	kind     ResultKind
	value    float64
	relError float64
	edges    []Edge
}

// ExactResult wraps a scalar that is exact by construction.
func ExactResult(value float64) Result {
	return Result{kind: ResultExact, value: value}
}

// EstimateResult wraps a scalar estimate with its relative error bound.
func EstimateResult(value, relError float64) Result {
	return Result{kind: ResultEstimate, value: value, relError: relError}
}

// StructureResult wraps an edge set.
func StructureResult(edges []Edge) Result {
	return Result{kind: ResultStructure, edges: edges, value: float64(len(edges))}
}

// Kind returns how the answer should be read.
func (r Result) Kind() ResultKind {
	return r.kind
}

// Value returns the scalar answer. For structural results it is the number
// of edges.
func (r Result) Value() float64 {
	return r.value
}

// RelativeError returns the relative error bound of an estimate, and zero
// for the other kinds.
func (r Result) RelativeError() float64 {
	return r.relError
}

// Edges returns the edge set of a structural result, and nil for scalar
// results.
func (r Result) Edges() []Edge {
	return r.edges
}

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r.kind {
	case ResultEstimate:
		return fmt.Sprintf("%g ±%g%% (estimate)", r.value, 100*r.relError)
	case ResultStructure:
		return fmt.Sprintf("%d edges (structure)", len(r.edges))
	}

	return fmt.Sprintf("%g (exact)", r.value)
}
