// Package parallel fans a unit of work out over many inputs and joins the
// results back in submission order.
//
// It provides:
//   - RunTasks: run one function per input concurrently, wait for all of them,
//     return results in input order and replay a per-result callback
//   - RunDictTasks: the same contract for map-typed inputs
//
// A batch is all-or-nothing: when any invocation fails the whole call fails
// and no results or callbacks are produced. Invocations are never cancelled
// by this package; every submitted item runs to completion.
package parallel
