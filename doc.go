// Package coinfolio tracks cryptocurrency buy and sell transactions and derives
// portfolio accounting metrics from them.
//
// The core is a stateless accounting engine: ComputeMetrics folds a
// transaction log in chronological order, tracking each asset with the
// weighted-average cost method, and values the result against a snapshot of
// current prices. It produces:
//   - per-asset holdings, cost basis, realized and unrealized profit and loss,
//   - aggregate totals for the whole portfolio,
//   - a timeline with one point per transaction,
//   - counters for assets that have no live price.
//
// Validate guards the log: it is the only place where an invalid state (a sell
// exceeding the holdings available at its date) is rejected. The Ledger type
// sequences add, edit and delete operations so that validation always reads a
// consistent log.
//
// Everything around the engine (persistence, remote prices, rendering, the
// command line) lives in sub-packages and only exchanges plain values with it.
package coinfolio
