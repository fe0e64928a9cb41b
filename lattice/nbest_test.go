package lattice

import "testing"

// buildScenario1NBestLattice mirrors buildScenario1Lattice but against the
// N-best-capable lattice, so NbestGenerator can enumerate every
// segmentation of 自然言語処理 in cost order (spec.md Scenario 3).
func buildScenario1NBestLattice(t *testing.T) *LatticeNBest {
	t.Helper()
	conn := zeroConnector{}
	l := NewLatticeNBest(6)

	l.InsertNode(0, 0, 2, wordIdx(0), param(1), conn) // 自然
	l.InsertNode(0, 0, 4, wordIdx(3), param(6), conn) // 自然言語

	l.InsertNode(2, 2, 4, wordIdx(1), param(4), conn) // 言語
	l.InsertNode(2, 2, 6, wordIdx(4), param(5), conn) // 言語処理

	l.InsertNode(4, 4, 6, wordIdx(2), param(3), conn) // 処理

	l.InsertEOS(6, conn)
	return l
}

func TestNbestGeneratorEnumeratesInNonDecreasingCostOrder(t *testing.T) {
	l := buildScenario1NBestLattice(t)
	gen := NewNbestGenerator(l, zeroConnector{})

	type want struct {
		cost int32
		ids  []uint32
	}
	wants := []want{
		{cost: 6, ids: []uint32{0, 4}},    // 自然 + 言語処理
		{cost: 8, ids: []uint32{0, 1, 2}}, // 自然 + 言語 + 処理
		{cost: 9, ids: []uint32{3, 2}},    // 自然言語 + 処理
	}

	for i, w := range wants {
		nodes, total, ok := gen.Next()
		if !ok {
			t.Fatalf("Next() #%d: ok=false, want a path of cost %d", i, w.cost)
		}
		if total != w.cost {
			t.Errorf("Next() #%d: total cost = %d, want %d", i, total, w.cost)
		}
		var ids []uint32
		for _, n := range nodes {
			ids = append(ids, n.Node.WordIdx.ID)
		}
		if len(ids) != len(w.ids) {
			t.Fatalf("Next() #%d: word ids = %v, want %v", i, ids, w.ids)
		}
		for j := range ids {
			if ids[j] != w.ids[j] {
				t.Errorf("Next() #%d: word ids = %v, want %v", i, ids, w.ids)
				break
			}
		}
	}

	if total := wants[0].cost; total != l.EOSCost() {
		t.Errorf("first Next() cost %d does not match EOSCost() %d", total, l.EOSCost())
	}

	if _, _, ok := gen.Next(); ok {
		t.Error("Next() after exhausting every segmentation should return ok=false")
	}
}
