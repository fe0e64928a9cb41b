package dictionary

import "testing"

func TestCharInfoPackingRoundTrip(t *testing.T) {
	cases := []struct {
		name      string
		cateIdset uint32
		baseID    uint8
		invoke    bool
		group     bool
		length    uint8
	}{
		{"zero", 0, 0, false, false, 0},
		{"kanji", 1 << 3, 3, true, false, 2},
		{"space-groupable", 1<<0 | 1<<1, 1, false, true, 15},
		{"max-length", 1 << 17, 255, true, true, 15},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			info := NewCharInfo(c.cateIdset, c.baseID, c.invoke, c.group, c.length)
			if got := info.CateIdset(); got != c.cateIdset {
				t.Errorf("CateIdset() = %#x, want %#x", got, c.cateIdset)
			}
			if got := info.BaseID(); got != c.baseID {
				t.Errorf("BaseID() = %d, want %d", got, c.baseID)
			}
			if got := info.Invoke(); got != c.invoke {
				t.Errorf("Invoke() = %v, want %v", got, c.invoke)
			}
			if got := info.Group(); got != c.group {
				t.Errorf("Group() = %v, want %v", got, c.group)
			}
			if got := info.Length(); got != c.length {
				t.Errorf("Length() = %d, want %d", got, c.length)
			}
		})
	}
}

func TestCharPropertyDefaultFallback(t *testing.T) {
	shapes := []CategoryShape{
		{Name: "DEFAULT", Invoke: false, Group: true, Length: 0},
		{Name: "KANJI", Invoke: false, Group: true, Length: 2},
	}
	ranges := []CharRangeEntry{
		{Lo: 0x4E00, Hi: 0x9FFF, Info: NewCharInfo(1<<1, 1, false, true, 2)},
	}
	cp, err := NewCharProperty(shapes, ranges)
	if err != nil {
		t.Fatalf("NewCharProperty: %v", err)
	}

	if id, ok := cp.CateID("KANJI"); !ok || id != 1 {
		t.Fatalf("CateID(KANJI) = (%d, %v), want (1, true)", id, ok)
	}
	if name, ok := cp.CateStr(0); !ok || name != "DEFAULT" {
		t.Fatalf("CateStr(0) = (%q, %v), want (\"DEFAULT\", true)", name, ok)
	}
	if !cp.HasCategory("DEFAULT") || cp.HasCategory("NOPE") {
		t.Fatalf("HasCategory disagreement")
	}

	// A kanji codepoint picks up the KANJI range.
	if info := cp.CharInfoAt('自'); info.BaseID() != 1 {
		t.Errorf("CharInfoAt('自').BaseID() = %d, want 1", info.BaseID())
	}
	// An ASCII codepoint outside every configured range falls back to DEFAULT.
	if info := cp.CharInfoAt('a'); info.BaseID() != 0 {
		t.Errorf("CharInfoAt('a').BaseID() = %d, want 0", info.BaseID())
	}
}

func TestNewCharPropertyRequiresDefault(t *testing.T) {
	_, err := NewCharProperty([]CategoryShape{{Name: "KANJI"}}, nil)
	if err == nil {
		t.Fatal("expected error for missing DEFAULT category")
	}
}

func TestNewCharPropertyRejectsDuplicateNames(t *testing.T) {
	_, err := NewCharProperty([]CategoryShape{
		{Name: "DEFAULT"},
		{Name: "DEFAULT"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for duplicate category name")
	}
}
