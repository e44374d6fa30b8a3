// Package batch drives lists of movie titles through the lookup ->
// classify -> store chain sequentially, tracking per-item outcomes. One
// item's failure never aborts the run; only repeated storage failures do.
package batch
