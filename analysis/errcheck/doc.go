// Package errcheck implements the Error Marker: it turns
// the Range Engine's ImpossibleBranches and GepOOB findings, plus a
// follow-on binary-instruction sweep, into ErrorChannel metadata.
//
// The binary-instruction sweep (binary_checks.go) covers what the
// module-level findings (impossible branches, array OOB) do not by
// themselves: overflow, divide-by-zero, and bad-shift detection directly
// from already-computed operand ranges, without needing a dedicated pass
// over the IR beyond what the Range Engine already produced.
package errcheck
