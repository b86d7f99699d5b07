package graphutil

import (
	"reflect"
	"sort"
	"testing"

	"github.com/yourbasic/graph"
)

func sortedReach(reach []int) []int {
	out := append([]int(nil), reach...)
	sort.Ints(out)
	return out
}

func TestTransitiveSuccessorsLinearChain(t *testing.T) {
	g := graph.New(3)
	g.Add(0, 1)
	g.Add(1, 2)
	reach := TransitiveSuccessors(g)
	if got := sortedReach(reach[0]); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("reach[0] = %v, want [1 2]", got)
	}
	if got := sortedReach(reach[2]); len(got) != 0 {
		t.Errorf("reach[2] = %v, want empty", got)
	}
}

func TestTransitiveSuccessorsCycleExcludesSourceOfDirectSelfLoop(t *testing.T) {
	// A vertex with a direct edge to itself never appears in its own
	// reached set: the visited set is seeded with the source vertex.
	g := graph.New(1)
	g.Add(0, 0)
	reach := TransitiveSuccessors(g)
	if len(reach[0]) != 0 {
		t.Errorf("reach[0] = %v, want empty for a direct self-loop", reach[0])
	}
}

func TestTransitiveSuccessorsMultiBlockCycle(t *testing.T) {
	// 0 -> 1 -> 0: from 0's perspective, 1 is reachable (it is a genuine
	// predecessor-of-0-via-1 cycle participant); 0 itself is excluded by
	// the seeded visited set even though the cycle technically returns
	// to it.
	g := graph.New(2)
	g.Add(0, 1)
	g.Add(1, 0)
	reach := TransitiveSuccessors(g)
	if got := sortedReach(reach[0]); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("reach[0] = %v, want [1]", got)
	}
}
