// Package progressmetrics implements the analytics read model over the
// execution domain's event flow.
//
// It tracks per-user totals, the maximum weight ever lifted per exercise, and
// awards a milestone for every tenth finished workout session. The projector
// consumes the cross-domain bus at-least-once, so it deduplicates redeliveries
// by remembering the last applied stream version per aggregate.
package progressmetrics
