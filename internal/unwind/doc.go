// Package unwind tracks which values need destruction as control flow
// leaves nested regions of a function, and generates the basic blocks
// that run those destructions on every exit path: normal scope close,
// early exits such as break/continue/return, and stack unwinding.
//
// The per-function Context owns a stack of cleanup scopes that callers
// push and pop while walking the source structure. Drops are scheduled
// into any open scope; popping a scope emits its drops for the normal
// path, while early exits and unwinding go through the exit-chain
// builder, which generates one block per scope with pending work and
// links them toward the exit. Generated blocks are cached per scope so
// repeated exits through the same scopes reuse them; scheduling a new
// drop into a scope invalidates its cached landing pad and every cache
// of the scopes nested inside it, while the scope's own cached exits
// survive as reusable suffixes of regenerated chains.
//
// Two unwinding protocols are supported, chosen once per function from
// the target: table-based landing pads with a resume primitive, and
// funclet-based cleanup pads with cleanup returns. The Label type
// carries the protocol through chain construction.
package unwind
