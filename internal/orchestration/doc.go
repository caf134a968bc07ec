// Package orchestration runs merges and inspections on behalf of the shells.
// It wires a merge.Merger to a ProgressReporter through a channel, collects
// the outcome into a MergeResult, and inspects documents concurrently. The
// CLI, the REPL and the TUI depend on the ProgressReporter and ResultPresenter
// interfaces, never on each other.
package orchestration
