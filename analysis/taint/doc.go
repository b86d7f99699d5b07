// One deliberate approximation in this package's propagation: a call's
// result is treated as taint-dependent on its arguments. When the walk
// reaches a call to a function with a body, it follows the callee's
// parameter uses and the call's own users; if either path reaches a
// sink, the call is marked tainted and, when the callee returns an
// integer, the callee joins TaintFuncs, whether or not its return value
// derives from the tainted argument. A callee that returns no integer
// never joins TaintFuncs this way; only the sink functions reached
// inside it do. The walk never goes backward from a callee's Return into
// the particular call site that passed the tainted argument.
package taint
