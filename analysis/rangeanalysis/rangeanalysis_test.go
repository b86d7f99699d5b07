package rangeanalysis

import (
	"testing"

	"github.com/ganler/mkint/analysis/backedge"
	"github.com/ganler/mkint/analysis/config"
	"github.com/ganler/mkint/analysis/state"
	"github.com/ganler/mkint/internal/crange"
	"github.com/ganler/mkint/ir"
)

func runToFixpoint(t *testing.T, m *ir.Module) *state.State {
	t.Helper()
	bs := backedge.Compute(m)
	s := state.New(m)
	InitRanges(s)
	Run(s, config.Default(), bs, nil)
	return s
}

func TestImpossibleBranchDetected(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("always_false_branch", 32)
	entry := b.Block(f, "entry")
	thenBlk := b.Block(f, "then")
	elseBlk := b.Block(f, "else")

	// 15 < 10 is always false, so taking the true edge is impossible.
	cmp := &ir.Cmp{Pred: ir.CmpULT, X: ir.NewConstant(15, 32), Y: ir.NewConstant(10, 32)}
	b.Emit(entry, cmp)
	b.Emit(entry, &ir.Branch{Cond: cmp, TrueSucc: thenBlk, FalseSucc: elseBlk})
	b.Emit(thenBlk, &ir.Return{Val: ir.NewConstant(1, 32)})
	b.Emit(elseBlk, &ir.Return{Val: ir.NewConstant(2, 32)})

	s := runToFixpoint(t, b.Module)

	trueImpossible, ok := s.ImpossibleBranches[cmp]
	if !ok || !trueImpossible {
		t.Errorf("expected the true branch of %s to be marked impossible, got (%v, %v)", cmp, trueImpossible, ok)
	}
}

func TestPossibleBranchNotFlagged(t *testing.T) {
	b := ir.NewBuilder()
	f := b.Func("maybe_branch", 32)
	entry := b.Block(f, "entry")
	thenBlk := b.Block(f, "then")
	elseBlk := b.Block(f, "else")

	cmp := &ir.Cmp{Pred: ir.CmpULT, X: ir.NewConstant(5, 32), Y: ir.NewConstant(10, 32)}
	b.Emit(entry, cmp)
	b.Emit(entry, &ir.Branch{Cond: cmp, TrueSucc: thenBlk, FalseSucc: elseBlk})
	b.Emit(thenBlk, &ir.Return{Val: ir.NewConstant(1, 32)})
	b.Emit(elseBlk, &ir.Return{Val: ir.NewConstant(2, 32)})

	s := runToFixpoint(t, b.Module)

	// 5 < 10 always holds: the true edge is possible and must not be
	// flagged, while the false edge is the impossible one.
	falseOnly, ok := s.ImpossibleBranches[cmp]
	if !ok || falseOnly {
		t.Errorf("expected only the false branch of %s to be marked impossible, got (%v, %v)", cmp, falseOnly, ok)
	}
}

func TestGepOOBDetected(t *testing.T) {
	b := ir.NewBuilder()
	arr := b.Array("buf", 32, 4)
	f := b.Func("reads_oob", 32)
	entry := b.Block(f, "entry")

	gep := &ir.GEP{Base: arr, Indices: []ir.Value{ir.NewConstant(0, 32), ir.NewConstant(10, 32)}}
	b.Emit(entry, gep)
	load := &ir.Load{Addr: gep, Bits: 32}
	b.Emit(entry, load)
	b.Emit(entry, &ir.Return{Val: load})

	s := runToFixpoint(t, b.Module)

	if !s.GepOOB[gep] {
		t.Errorf("index 10 into a 4-element array should be flagged out of bounds")
	}
}

func TestGepInBoundsNotFlagged(t *testing.T) {
	b := ir.NewBuilder()
	arr := b.Array("buf", 32, 4)
	f := b.Func("reads_in_bounds", 32)
	entry := b.Block(f, "entry")

	gep := &ir.GEP{Base: arr, Indices: []ir.Value{ir.NewConstant(0, 32), ir.NewConstant(2, 32)}}
	b.Emit(entry, gep)
	load := &ir.Load{Addr: gep, Bits: 32}
	b.Emit(entry, load)
	b.Emit(entry, &ir.Return{Val: load})

	s := runToFixpoint(t, b.Module)

	if s.GepOOB[gep] {
		t.Errorf("index 2 into a 4-element array must not be flagged out of bounds")
	}
}

func TestBackedgePredecessorSkippedInLoopEntry(t *testing.T) {
	// A two-block loop (head <-> body) must have its body->head edge
	// recognized as a backedge, so entryEnv for head does not wait on
	// body's not-yet-converged exit state on the first pass.
	b := ir.NewBuilder()
	f := b.Func("loop", 32)
	entry := b.Block(f, "entry")
	head := b.Block(f, "head")
	body := b.Block(f, "body")
	exit := b.Block(f, "exit")

	b.Emit(entry, &ir.Branch{TrueSucc: head})
	cmp := &ir.Cmp{Pred: ir.CmpEQ, X: ir.NewConstant(1, 32), Y: ir.NewConstant(1, 32)}
	b.Emit(head, cmp)
	b.Emit(head, &ir.Branch{Cond: cmp, TrueSucc: body, FalseSucc: exit})
	b.Emit(body, &ir.Branch{TrueSucc: head})
	b.Emit(exit, &ir.Return{Val: ir.NewConstant(0, 32)})

	bs := backedge.Compute(b.Module)
	if !bs.IsBackedge(head, body) {
		t.Fatalf("body -> head should be detected as a backedge")
	}
	if bs.IsBackedge(head, entry) {
		t.Fatalf("entry -> head is not part of any cycle and must not be a backedge")
	}

	s := state.New(b.Module)
	InitRanges(s)
	Run(s, config.Default(), bs, nil)
}

func TestSwitchNarrowsCondPerCaseAndDefault(t *testing.T) {
	// switcher(a): k = a + 0; switch k { 1, 3 -> case; 2 -> other; default }
	// case's two values (1 and 3) share a target, so its narrowed range
	// must be their union, not just the first match; default's narrowed
	// range must be the complement of every case value (1, 2, 3).
	b := ir.NewBuilder()
	f := b.Func("switcher", 32, 32)
	entry := b.Block(f, "entry")
	caseBlk := b.Block(f, "case")
	otherBlk := b.Block(f, "other")
	defBlk := b.Block(f, "default")

	k := &ir.BinOp{Op: ir.Add, X: f.Params[0], Y: ir.NewConstant(0, 32), ResBits: 32}
	b.Emit(entry, k)
	sw := &ir.Switch{
		Cond:    k,
		Default: defBlk,
		Cases: []ir.SwitchCase{
			{Value: ir.NewConstant(1, 32), Succ: caseBlk},
			{Value: ir.NewConstant(3, 32), Succ: caseBlk},
			{Value: ir.NewConstant(2, 32), Succ: otherBlk},
		},
	}
	b.Emit(entry, sw)
	b.Emit(caseBlk, &ir.Return{Val: ir.NewConstant(0, 32)})
	b.Emit(otherBlk, &ir.Return{Val: ir.NewConstant(0, 32)})
	b.Emit(defBlk, &ir.Return{Val: ir.NewConstant(0, 32)})

	s := runToFixpoint(t, b.Module)

	caseRange := s.RangeOf(f, caseBlk, k)
	want := crange.Union(crange.NewPoint(32, 1), crange.NewPoint(32, 3))
	if caseRange != want {
		t.Errorf("case block: k = %s, want the union of its two case values %s", caseRange, want)
	}

	otherRange := s.RangeOf(f, otherBlk, k)
	if otherRange != crange.NewPoint(32, 2) {
		t.Errorf("other block: k = %s, want {2}", otherRange)
	}

	defRange := s.RangeOf(f, defBlk, k)
	allCases := crange.Union(crange.Union(crange.NewPoint(32, 1), crange.NewPoint(32, 3)), crange.NewPoint(32, 2))
	wantDefault := crange.Inverse(allCases)
	if defRange != wantDefault {
		t.Errorf("default block: k = %s, want the complement of {1,2,3} = %s", defRange, wantDefault)
	}
	for _, v := range []uint64{1, 2, 3} {
		if defRange.Contains(v) {
			t.Errorf("default block's narrowed range must not contain case value %d", v)
		}
	}
	if !defRange.Contains(0) || !defRange.Contains(4) {
		t.Errorf("default block's narrowed range should still contain values outside {1,2,3}, got %s", defRange)
	}
}

func TestArgRangeSummaryRefinedFromCallSite(t *testing.T) {
	b := ir.NewBuilder()
	callee := b.Func("callee", 32, 32)
	calleeEntry := b.Block(callee, "entry")
	b.Emit(calleeEntry, &ir.Return{Val: callee.Params[0]})

	caller := b.Func("caller", 32)
	callerEntry := b.Block(caller, "entry")
	call := &ir.Call{Callee: callee, Args: []ir.Value{ir.NewConstant(7, 32)}}
	b.Emit(callerEntry, call)
	b.Emit(callerEntry, &ir.Return{Val: call})

	s := runToFixpoint(t, b.Module)

	got := s.ArgRanges[callee.Params[0]]
	if !got.Contains(7) {
		t.Errorf("callee's parameter summary %s should contain the argument value 7 passed at the only call site", got)
	}
}
