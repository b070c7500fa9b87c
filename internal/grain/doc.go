// Package grain holds the polycrystal state as a struct-of-arrays table.
//
// Every state record of a grain lives in its own column, indexed by [ID].
// Columns only grow, and only together, through [Table.Append]; after every
// population change the owner runs [Table.Validate], which is the fatal
// consistency check for the whole simulation.
//
// # Thread Safety
//
// A Table is not safe for concurrent mutation. The per-grain phases of a time
// step fan out with [ParallelFor] or [ParallelErr], where each worker writes
// only the rows in its own range. Appending rows must happen from a single
// goroutine between phases.
package grain
