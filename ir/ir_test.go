package ir

import "testing"

func TestMetadataSetGetHas(t *testing.T) {
	m := NewMetadata()
	e := &GlobalScalar{ID: "g", Bits: 32}

	if m.Has(ErrorChannel, e) {
		t.Fatalf("fresh metadata should have nothing set")
	}
	m.Set(ErrorChannel, e, ErrIntegerOverflow)
	if !m.Has(ErrorChannel, e) {
		t.Fatalf("expected entity to carry a value after Set")
	}
	got, ok := m.Get(ErrorChannel, e)
	if !ok || got != ErrIntegerOverflow {
		t.Errorf("Get = (%q, %v), want (%q, true)", got, ok, ErrIntegerOverflow)
	}

	m.Set(ErrorChannel, e, ErrDivideByZero)
	got, _ = m.Get(ErrorChannel, e)
	if got != ErrDivideByZero {
		t.Errorf("Set should overwrite prior value, got %q", got)
	}

	if m.Has(TaintChannel, e) {
		t.Errorf("value on one channel must not leak into another")
	}
}

func TestMetadataEntities(t *testing.T) {
	m := NewMetadata()
	a := &GlobalScalar{ID: "a", Bits: 8}
	b := &GlobalScalar{ID: "b", Bits: 8}
	m.Set(TaintChannel, a, "")
	m.Set(TaintChannel, b, "")

	entities := m.Entities(TaintChannel)
	if len(entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(entities))
	}
	if len(m.Entities(SinkChannel)) != 0 {
		t.Errorf("unused channel should report no entities")
	}
}

func TestModuleUsers(t *testing.T) {
	b := NewBuilder()
	g := b.Global("g", 32, nil)
	f := b.Func("f", 32, 32)
	entry := b.Block(f, "entry")
	load := &Load{Addr: g, Bits: 32}
	b.Emit(entry, load)
	add := &BinOp{Op: Add, X: load, Y: f.Params[0], ResBits: 32}
	b.Emit(entry, add)
	b.Emit(entry, &Return{Val: add})

	users := b.Module.Users(g)
	if len(users) != 1 || users[0] != Instruction(load) {
		t.Fatalf("expected g's only user to be the load, got %v", users)
	}

	users = b.Module.Users(load)
	if len(users) != 1 || users[0] != Instruction(add) {
		t.Fatalf("expected load's only user to be the add, got %v", users)
	}

	users = b.Module.Users(f.Params[0])
	if len(users) != 1 || users[0] != Instruction(add) {
		t.Fatalf("expected the parameter's only user to be the add, got %v", users)
	}
}

func TestModuleUsersInvalidatedOnMutation(t *testing.T) {
	b := NewBuilder()
	f := b.Func("f", 32, 32)
	entry := b.Block(f, "entry")
	ret := &Return{Val: f.Params[0]}
	b.Emit(entry, ret)

	_ = b.Module.Users(f.Params[0]) // force the cache to build

	shim := &Function{Name: "f.mkint.arg0", ReturnBits: 32}
	b.Module.AddFunction(shim)
	call := &Call{Callee: shim}
	PrependInstruction(entry, call)
	ReplaceValue(f, f.Params[0], call)
	b.Module.InvalidateUsers()

	users := b.Module.Users(call)
	if len(users) != 1 || users[0] != Instruction(ret) {
		t.Fatalf("expected the shim call's only user to be the return, got %v", users)
	}
	if len(b.Module.Users(f.Params[0])) != 0 {
		t.Errorf("the parameter should have no users left after redirection")
	}
}

func TestFuncByName(t *testing.T) {
	b := NewBuilder()
	b.Func("f", 32)
	if _, ok := b.Module.FuncByName("f"); !ok {
		t.Errorf("expected to find function f")
	}
	if _, ok := b.Module.FuncByName("missing"); ok {
		t.Errorf("did not expect to find a nonexistent function")
	}
}

func TestBlockPredsAndSuccs(t *testing.T) {
	b := NewBuilder()
	f := b.Func("f", 32)
	entry := b.Block(f, "entry")
	thenBlk := b.Block(f, "then")
	elseBlk := b.Block(f, "else")
	cmp := &Cmp{Pred: CmpEQ, X: NewConstant(1, 32), Y: NewConstant(1, 32)}
	b.Emit(entry, cmp)
	b.Emit(entry, &Branch{Cond: cmp, TrueSucc: thenBlk, FalseSucc: elseBlk})
	b.Emit(thenBlk, &Return{Val: NewConstant(1, 32)})
	b.Emit(elseBlk, &Return{Val: NewConstant(2, 32)})

	if len(entry.Succs()) != 2 || entry.Succs()[0] != thenBlk || entry.Succs()[1] != elseBlk {
		t.Errorf("unexpected successors of entry: %v", entry.Succs())
	}
	if len(thenBlk.Preds()) != 1 || thenBlk.Preds()[0] != entry {
		t.Errorf("unexpected predecessors of then: %v", thenBlk.Preds())
	}
}

func TestCmpPredicateSwappedAndInverse(t *testing.T) {
	if CmpSLT.Swapped() != CmpSGT {
		t.Errorf("Swapped(slt) = %v, want sgt", CmpSLT.Swapped())
	}
	if CmpSLT.Inverse() != CmpSGE {
		t.Errorf("Inverse(slt) = %v, want sge", CmpSLT.Inverse())
	}
	if CmpEQ.Inverse() != CmpNE {
		t.Errorf("Inverse(eq) = %v, want ne", CmpEQ.Inverse())
	}
}

func TestIndexOf(t *testing.T) {
	b := NewBuilder()
	f := b.Func("f", 32)
	entry := b.Block(f, "entry")
	c := NewConstant(1, 32)
	ret := &Return{Val: c}
	b.Emit(entry, ret)
	if got := IndexOf(entry, ret); got != 0 {
		t.Errorf("IndexOf = %d, want 0", got)
	}
	if got := IndexOf(entry, &Return{}); got != -1 {
		t.Errorf("IndexOf of an instruction not in the block should be -1, got %d", got)
	}
}
