package dictionary

import "testing"

func buildSampleRawConnector(t *testing.T) *RawConnector {
	t.Helper()
	b := NewRawConnectorBuilder()
	b.InsertCost(10, 20, 5)
	b.InsertCost(10, 21, -3)
	b.InsertCost(11, 20, 2)
	b.InsertCost(11, 22, 7)

	right := [][]uint32{
		{10, 11},
		{11, InvalidFeatureID},
	}
	left := [][]uint32{
		{20, 22},
		{21, InvalidFeatureID},
	}
	conn, err := b.Build(right, left)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return conn
}

func TestScorerScalarAndSIMDAgree(t *testing.T) {
	conn := buildSampleRawConnector(t)
	for r := uint16(0); r < conn.NumRight(); r++ {
		for l := uint16(0); l < conn.NumLeft(); l++ {
			scalar := conn.scorer.accumulateScalar(conn.rightFeats[r], conn.leftFeats[l])
			simd := conn.scorer.accumulateSIMD8(conn.rightFeats[r], conn.leftFeats[l])
			if scalar != simd {
				t.Errorf("right=%d left=%d: scalar=%d simd=%d disagree", r, l, scalar, simd)
			}
		}
	}
}

func TestScorerUnseenPairContributesZero(t *testing.T) {
	conn := buildSampleRawConnector(t)
	// right id 10 paired against left id 22 was never inserted.
	cost := conn.scorer.AccumulateCost([]uint32{10}, []uint32{22})
	if cost != 0 {
		t.Errorf("AccumulateCost for unregistered pair = %d, want 0", cost)
	}
}

func TestPadFeatureVectorPadsToLaneMultiple(t *testing.T) {
	padded := PadFeatureVector([]uint32{1, 2, 3})
	if len(padded)%simdLanes != 0 {
		t.Fatalf("len(padded) = %d, not a multiple of %d", len(padded), simdLanes)
	}
	for i := 3; i < len(padded); i++ {
		if padded[i] != InvalidFeatureID {
			t.Errorf("padded[%d] = %d, want InvalidFeatureID", i, padded[i])
		}
	}
	// Already-aligned input is returned untouched.
	exact := make([]uint32, simdLanes)
	if got := PadFeatureVector(exact); len(got) != simdLanes {
		t.Errorf("PadFeatureVector grew an already-aligned vector: len=%d", len(got))
	}
}

func TestDualConnectorRoutesMatrixSubsetAndFallsBackToRaw(t *testing.T) {
	matrix, err := NewMatrixConnector(1, 1, []int16{99})
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	raw := buildSampleRawConnector(t)

	dual, err := NewDualConnector(matrix, raw, []uint16{0}, []uint16{0})
	if err != nil {
		t.Fatalf("NewDualConnector: %v", err)
	}

	if got := dual.Cost(0, 0); got != 99 {
		t.Errorf("Cost(0,0) routed through matrix = %d, want 99", got)
	}
	// (1, 1) is outside the matrix subset, so it must fall back to raw's
	// own computation for that pair.
	want := raw.Cost(1, 1)
	if got := dual.Cost(1, 1); got != want {
		t.Errorf("Cost(1,1) fallback = %d, want raw.Cost(1,1) = %d", got, want)
	}
}

func TestDualConnectorRejectsOutOfRangeMatrixID(t *testing.T) {
	matrix, err := NewMatrixConnector(1, 1, []int16{0})
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	raw := buildSampleRawConnector(t)
	if _, err := NewDualConnector(matrix, raw, []uint16{99}, []uint16{0}); err == nil {
		t.Fatal("expected an error for an out-of-range matrix right id")
	}
}
