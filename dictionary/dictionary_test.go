package dictionary

import (
	"bytes"
	"testing"
)

// buildScenario1Dictionary assembles the Dictionary spec.md's Scenario 1
// describes: a 1x1 connector (zero connection cost everywhere), a single
// DEFAULT character category that invokes unknown-word generation for any
// character the lexicon doesn't cover, and the five-entry lexicon from
// scenario1Entries.
func buildScenario1Dictionary(t *testing.T) *Dictionary {
	t.Helper()
	conn, err := NewMatrixConnector(1, 1, []int16{0})
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp, err := NewCharProperty(
		[]CategoryShape{{Name: "DEFAULT", Invoke: false, Group: true, Length: 0}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewCharProperty: %v", err)
	}
	unk := []RawUnkEntry{
		{Category: "DEFAULT", LeftID: 0, RightID: 0, WordCost: 100, Feature: "*"},
	}
	dict, err := BuildDictionary(scenario1Entries(), nil, unk, conn, charProp)
	if err != nil {
		t.Fatalf("BuildDictionary: %v", err)
	}
	return dict
}

func TestBuildDictionaryScenario1(t *testing.T) {
	dict := buildScenario1Dictionary(t)

	if dict.SystemLexicon().NumWords() != 5 {
		t.Fatalf("NumWords() = %d, want 5", dict.SystemLexicon().NumWords())
	}
	if dict.UserLexicon() != nil {
		t.Fatalf("expected no user lexicon")
	}
	if got := dict.Connector().Cost(0, 0); got != 0 {
		t.Errorf("Cost(0,0) = %d, want 0", got)
	}
}

func TestBuildDictionaryRejectsOutOfBoundsConnIDs(t *testing.T) {
	conn, err := NewMatrixConnector(1, 1, []int16{0})
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp, err := NewCharProperty([]CategoryShape{{Name: "DEFAULT"}}, nil)
	if err != nil {
		t.Fatalf("NewCharProperty: %v", err)
	}
	bad := []RawWordEntry{
		{Surface: "x", Param: WordParam{LeftID: 9, RightID: 0, WordCost: 1}, Feature: "x"},
	}
	_, err = BuildDictionary(bad, nil, nil, conn, charProp)
	if err == nil {
		t.Fatal("expected an error for a left id outside the connector's declared bounds")
	}
}

// TestDictionaryWriteReadRoundTrip exercises spec.md §8's round-trip law:
// Read(Write(d)) must reproduce every lookup Scenario 1 depends on.
func TestDictionaryWriteReadRoundTrip(t *testing.T) {
	dict := buildScenario1Dictionary(t)

	var buf bytes.Buffer
	if err := dict.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reloaded, err := Read(buf.Bytes())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if reloaded.SystemLexicon().NumWords() != dict.SystemLexicon().NumWords() {
		t.Fatalf("NumWords mismatch after round trip: got %d, want %d",
			reloaded.SystemLexicon().NumWords(), dict.SystemLexicon().NumWords())
	}

	var before, after []LexMatch
	chars := []rune("自然言語処理")
	dict.SystemLexicon().CommonPrefixIterate(chars, func(m LexMatch) bool {
		before = append(before, m)
		return true
	})
	reloaded.SystemLexicon().CommonPrefixIterate(chars, func(m LexMatch) bool {
		after = append(after, m)
		return true
	})
	if len(before) != len(after) {
		t.Fatalf("match count mismatch: before=%d after=%d", len(before), len(after))
	}
	for i := range before {
		if before[i].WordIdx != after[i].WordIdx || before[i].EndChar != after[i].EndChar {
			t.Errorf("match %d mismatch: before=%+v after=%+v", i, before[i], after[i])
		}
		bf := dict.SystemLexicon().Feature(before[i].WordIdx.ID)
		af := reloaded.SystemLexicon().Feature(after[i].WordIdx.ID)
		if bf != af {
			t.Errorf("feature mismatch at %d: before=%q after=%q", i, bf, af)
		}
	}

	if reloaded.Connector().Cost(0, 0) != dict.Connector().Cost(0, 0) {
		t.Errorf("connector cost mismatch after round trip")
	}
	if reloaded.CharProperty().CharInfoAt('自').BaseID() != dict.CharProperty().CharInfoAt('自').BaseID() {
		t.Errorf("char property mismatch after round trip")
	}
}

// TestDictionaryMapPreservesConnectorCost is spec.md §8 invariant 7: after
// applying any permutation, Cost(mapper.Right(r), mapper.Left(l)) must
// equal the pre-mapping Cost(r, l) for every (r, l).
func TestDictionaryMapPreservesConnectorCost(t *testing.T) {
	costs := []int16{10, 20, 30, 40, 50, 60} // numRight=2, numLeft=3
	conn, err := NewMatrixConnector(2, 3, costs)
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	charProp, err := NewCharProperty([]CategoryShape{{Name: "DEFAULT"}}, nil)
	if err != nil {
		t.Fatalf("NewCharProperty: %v", err)
	}
	entries := []RawWordEntry{
		{Surface: "a", Param: WordParam{LeftID: 0, RightID: 1, WordCost: 1}, Feature: "a"},
	}
	dict, err := BuildDictionary(entries, nil, nil, conn, charProp)
	if err != nil {
		t.Fatalf("BuildDictionary: %v", err)
	}

	original := make([][]int32, 2)
	for r := 0; r < 2; r++ {
		original[r] = make([]int32, 3)
		for l := 0; l < 3; l++ {
			original[r][l] = dict.Connector().Cost(uint16(r), uint16(l))
		}
	}

	mapper, err := NewConnIdMapper([]uint16{2, 0, 1}, []uint16{1, 0})
	if err != nil {
		t.Fatalf("NewConnIdMapper: %v", err)
	}
	if err := dict.Map(mapper); err != nil {
		t.Fatalf("Map: %v", err)
	}

	for r := 0; r < 2; r++ {
		for l := 0; l < 3; l++ {
			nr, nl := mapper.Right(uint16(r)), mapper.Left(uint16(l))
			got := dict.Connector().Cost(nr, nl)
			if got != original[r][l] {
				t.Errorf("Cost(%d,%d) after map = %d, want %d (original Cost(%d,%d))", nr, nl, got, original[r][l], r, l)
			}
		}
	}

	// The lexicon entry's left/right ids must have moved along with the
	// connector so that its cost lookup still resolves to the same cell.
	w := dict.SystemLexicon().WordParamAt(0)
	if w.LeftID != mapper.Left(0) || w.RightID != mapper.Right(1) {
		t.Errorf("word param ids not remapped: got left=%d right=%d, want left=%d right=%d",
			w.LeftID, w.RightID, mapper.Left(0), mapper.Right(1))
	}
}
