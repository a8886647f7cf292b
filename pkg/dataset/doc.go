// Package dataset holds the harvested match records and the store that
// persists them. The store is checkpointed: each flush re-reads the stored
// dataset, appends the new batch and writes the result back in one piece.
package dataset
