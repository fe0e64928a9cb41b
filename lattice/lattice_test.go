package lattice

import (
	"testing"

	"github.com/vibratogo/vibrato/dictionary"
)

// zeroConnector is a Connector whose cost is always 0, letting these
// tests isolate per-node word costs exactly as spec.md's Scenario 1
// does ("matrix 1 1 / 0 0 0").
type zeroConnector struct{}

func (zeroConnector) NumLeft() uint16        { return 1 }
func (zeroConnector) NumRight() uint16       { return 1 }
func (zeroConnector) Cost(_, _ uint16) int32 { return 0 }

func wordIdx(id uint32) dictionary.WordIdx {
	return dictionary.WordIdx{Type: dictionary.LexSystem, ID: id}
}

func param(cost int16) dictionary.WordParam {
	return dictionary.WordParam{LeftID: 0, RightID: 0, WordCost: cost}
}

// buildScenario1Lattice walks the same six characters and five dictionary
// entries as spec.md's Scenario 1, inserting nodes in end-position order
// exactly as the tokenizer's lattice construction loop would.
func buildScenario1Lattice(t *testing.T) *Lattice {
	t.Helper()
	conn := zeroConnector{}
	l := NewLattice(6)

	l.InsertNode(0, 0, 2, wordIdx(0), param(1), conn) // 自然
	l.InsertNode(0, 0, 4, wordIdx(3), param(6), conn) // 自然言語

	l.InsertNode(2, 2, 4, wordIdx(1), param(4), conn) // 言語
	l.InsertNode(2, 2, 6, wordIdx(4), param(5), conn) // 言語処理

	l.InsertNode(4, 4, 6, wordIdx(2), param(3), conn) // 処理

	l.InsertEOS(6, conn)
	return l
}

func TestLatticeViterbiMinimalPathScenario1(t *testing.T) {
	l := buildScenario1Lattice(t)
	if got := l.EOSCost(); got != 6 {
		t.Fatalf("EOSCost() = %d, want 6 (自然+言語処理)", got)
	}

	path := l.Backtrace()
	if len(path) != 2 {
		t.Fatalf("Backtrace() returned %d nodes, want 2: %+v", len(path), path)
	}
	// Backtrace runs EOS-to-BOS: 言語処理 (ending at 6) then 自然 (ending at 2).
	if path[0].EndChar != 6 || path[0].Node.WordIdx.ID != 4 {
		t.Errorf("path[0] = %+v, want EndChar=6 WordIdx.ID=4 (言語処理)", path[0])
	}
	if path[1].EndChar != 2 || path[1].Node.WordIdx.ID != 0 {
		t.Errorf("path[1] = %+v, want EndChar=2 WordIdx.ID=0 (自然)", path[1])
	}
}

func TestLatticeTieBreakPrefersLaterEntry(t *testing.T) {
	conn := zeroConnector{}
	l := NewLattice(2)

	// Two equal-cost routes into position 1, then a single word spanning
	// to position 2 that must resolve its predecessor via the <= tie
	// break (the later of the two equal-cost entries at ends[1]).
	l.InsertNode(0, 0, 1, wordIdx(0), param(5), conn)
	l.InsertNode(0, 0, 1, wordIdx(1), param(5), conn)
	l.InsertNode(1, 1, 2, wordIdx(2), param(1), conn)

	node := l.EndsAt(2)[0]
	if node.MinIdx != 1 {
		t.Errorf("MinIdx = %d, want 1 (later of two equal-cost predecessors)", node.MinIdx)
	}
}

func TestLatticeResetReseedsBOS(t *testing.T) {
	l := NewLattice(3)
	l.InsertNode(0, 0, 1, wordIdx(0), param(1), zeroConnector{})
	l.Reset(2)
	if len(l.EndsAt(0)) != 1 {
		t.Fatalf("after Reset, ends[0] has %d nodes, want 1 (BOS)", len(l.EndsAt(0)))
	}
	if len(l.EndsAt(1)) != 0 {
		t.Fatalf("after Reset, ends[1] was not cleared: %+v", l.EndsAt(1))
	}
}
