// Package columnar implements the in-memory columnar engine the hub builds
// its deferred execution plans on.
//
// The engine has three layers:
//
//   - Series: a single named column of float64 or string values with an
//     explicit validity bitmap, so nulls survive every transformation.
//   - Frame: an ordered, uniform-length collection of Series. Frames are
//     replaced wholesale by transformations; rows are never mutated in place.
//   - Plan: a deferred computation over appended batches. Appending a batch
//     and queueing steps is cheap and never executes anything; Collect unions
//     the batches with null-fill (schema-tolerant) and runs the queued steps
//     in order.
//
// The package also bridges to Apache Arrow: a materialized Frame converts
// losslessly (nulls included) to an arrow.Record for zero-copy hand-off to
// exporters and for parquet checkpointing.
package columnar
