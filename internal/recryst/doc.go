// Package recryst models stored deformation energy and dynamic
// recrystallization.
//
// Each grain carries a fixed population of subgrains, sampled once when the
// grain is created. A subgrain whose driving force
//
//	ΔG = Ē - 3·egb/r
//
// is positive nucleates a new grain when its volume still fits inside the
// parent. Nucleation runs in two phases: [Detect] scans grains in parallel
// without writing anything, and [Apply] mutates parents and appends the new
// grains sequentially.
package recryst
