// Package rangeanalysis implements the Range Engine: a
// per-function interval-lattice dataflow analysis over internal/crange,
// with interprocedural argument/return summaries and branch/switch
// narrowing, iterated to a whole-module fixed point.
//
// Each function is walked to a local fixed point by repeated sweeps over
// its blocks in program order, with a per-block environment joined at
// merge points; argument, return and global summaries are then refined
// across an outer whole-module round until none of them changes.
package rangeanalysis
