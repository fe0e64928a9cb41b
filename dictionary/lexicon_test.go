package dictionary

import "testing"

// scenario1Entries mirrors spec.md's Scenario 1 lex.csv literal rows.
func scenario1Entries() []RawWordEntry {
	return []RawWordEntry{
		{Surface: "自然", Param: WordParam{LeftID: 0, RightID: 0, WordCost: 1}, Feature: "sizen"},
		{Surface: "言語", Param: WordParam{LeftID: 0, RightID: 0, WordCost: 4}, Feature: "gengo"},
		{Surface: "処理", Param: WordParam{LeftID: 0, RightID: 0, WordCost: 3}, Feature: "shori"},
		{Surface: "自然言語", Param: WordParam{LeftID: 0, RightID: 0, WordCost: 6}, Feature: "sizengengo"},
		{Surface: "言語処理", Param: WordParam{LeftID: 0, RightID: 0, WordCost: 5}, Feature: "gengoshori"},
	}
}

func TestLexiconCommonPrefixIterateOrdering(t *testing.T) {
	pool := newStringPool()
	lex, err := FromEntries(scenario1Entries(), LexSystem, pool)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}

	chars := []rune("自然言語処理")
	var matches []LexMatch
	lex.CommonPrefixIterate(chars, func(m LexMatch) bool {
		matches = append(matches, m)
		return true
	})

	// Starting at position 0, both "自然" (len 2) and "自然言語" (len 4) are
	// prefixes of the query and must both be yielded, shortest end first.
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	if matches[0].EndChar != 2 || lex.Feature(matches[0].WordIdx.ID) != "sizen" {
		t.Errorf("matches[0] = %+v, want EndChar=2 feature=sizen", matches[0])
	}
	if matches[1].EndChar != 4 || lex.Feature(matches[1].WordIdx.ID) != "sizengengo" {
		t.Errorf("matches[1] = %+v, want EndChar=4 feature=sizengengo", matches[1])
	}
}

func TestLexiconCommonPrefixIterateNoMatch(t *testing.T) {
	pool := newStringPool()
	lex, err := FromEntries(scenario1Entries(), LexSystem, pool)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	var matches []LexMatch
	lex.CommonPrefixIterate([]rune("xyz"), func(m LexMatch) bool {
		matches = append(matches, m)
		return true
	})
	if len(matches) != 0 {
		t.Fatalf("got %d matches for non-dictionary input, want 0", len(matches))
	}
}

func TestLexiconHomographsShareTrieNode(t *testing.T) {
	pool := newStringPool()
	entries := []RawWordEntry{
		{Surface: "橋", Param: WordParam{WordCost: 1}, Feature: "bridge"},
		{Surface: "橋", Param: WordParam{WordCost: 2}, Feature: "edge"},
	}
	lex, err := FromEntries(entries, LexSystem, pool)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	var ids []uint32
	lex.CommonPrefixIterate([]rune("橋"), func(m LexMatch) bool {
		ids = append(ids, m.WordIdx.ID)
		return true
	})
	if len(ids) != 2 {
		t.Fatalf("got %d homograph matches, want 2", len(ids))
	}
	// Posting order is ascending word id, so insertion order is preserved.
	if ids[0] != 0 || ids[1] != 1 {
		t.Errorf("homograph ids = %v, want [0 1]", ids)
	}
}

func TestLexiconEmptySurfaceSkipped(t *testing.T) {
	pool := newStringPool()
	entries := []RawWordEntry{
		{Surface: "", Param: WordParam{WordCost: 1}, Feature: "ghost"},
		{Surface: "a", Param: WordParam{WordCost: 1}, Feature: "a"},
	}
	lex, err := FromEntries(entries, LexSystem, pool)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	var matches []LexMatch
	lex.CommonPrefixIterate([]rune("a"), func(m LexMatch) bool {
		matches = append(matches, m)
		return true
	})
	if len(matches) != 1 || matches[0].WordIdx.ID != 1 {
		t.Fatalf("expected only the non-empty surface to be indexed, got %+v", matches)
	}
}

func TestLexiconValidateRejectsOutOfBoundsIDs(t *testing.T) {
	pool := newStringPool()
	entries := []RawWordEntry{
		{Surface: "a", Param: WordParam{LeftID: 5, RightID: 0, WordCost: 1}, Feature: "a"},
	}
	lex, err := FromEntries(entries, LexSystem, pool)
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	conn, err := NewMatrixConnector(1, 1, []int16{0})
	if err != nil {
		t.Fatalf("NewMatrixConnector: %v", err)
	}
	if err := lex.Validate(conn); err == nil {
		t.Fatal("expected Validate to reject an out-of-bounds left id")
	}
}
