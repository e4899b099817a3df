// Package graphstreams provides streaming graph algorithms: algorithms that
// compute properties of a graph (connectivity, spanning structure, matching
// size, bipartiteness) while observing the graph only as a stream of
// edge-update events, using memory sublinear in the number of edges.
//
// Graphs are never materialized. An edge stream is an initial ProducerFunc
// that produces Update values (an edge plus an insert/delete sign) from
// slices, channels, or any arbitrary source. Updates flow through optional
// intermediate operations (validation, filtering, mapping) into sketches:
// fixed-size accumulators seeded with explicit randomness.
//
// Two families of accumulators are provided:
//
//   - Linear sketches (OneSparse, SparseRecovery, L0Sampler, ForestSketch,
//     CutSparsifier) support both insertions and deletions (the turnstile
//     model). Their state is a linear function of the update stream, so any
//     permutation of the same updates yields the same state, and sketches
//     built over disjoint parts of a stream can be merged into the sketch
//     of the whole stream without reprocessing.
//
//   - Sampling accumulators (Reservoir, PrioritySampler, TriangleEstimator)
//     maintain a bounded random sample and answer with unbiased statistical
//     estimators.
//
// Answers are randomized: a query is correct with a stated probability over
// the sketch's seed, not deterministically. Callers that need higher
// confidence run independently seeded sketches.
//
// Updates must be applied to a single sketch in stream order. Parallelism
// is exploited across independent sub-streams instead: partition the
// stream, build one sketch per partition, and combine them with Merge (see
// BuildPartitioned). Linear sketches merge only when built with identical
// seeds and parameters; sampling accumulators merge only when built with
// independent seeds.
//
// Stream operations receive a context.CancelCauseFunc. Canceling the
// stream's context short-circuits processing; malformed input (self-loops,
// out-of-range vertex identifiers) cancels the stream with an *InputError
// rather than being dropped silently.
package graphstreams
