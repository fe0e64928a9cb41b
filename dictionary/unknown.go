package dictionary

import (
	"fmt"
	"sort"
)

// UnkEntry is one unknown-word generation template: the category it
// applies to, its fixed cost parameters, and its feature string.
type UnkEntry struct {
	CateID    uint8
	LeftID    uint16
	RightID   uint16
	WordCost  int16
	FeatureID uint32
}

// RawUnkEntry is the parser-level view of one unk.def row: the category
// named by string (rather than the resolved base id), its WordParam,
// and its opaque feature string — the shape a text parser outside this
// package would hand in, mirroring RawWordEntry's role for lex.csv.
type RawUnkEntry struct {
	Category string
	LeftID   uint16
	RightID  uint16
	WordCost int16
	Feature  string
}

// UnkHandler groups UnkEntry rows by category id so every template for a
// category can be enumerated in one contiguous slice.
type UnkHandler struct {
	offsets     []uint32 // len = numCategories+1
	entries     []UnkEntry
	featurePool *stringPool
}

// NewUnkHandler groups entries by CateID (entries need not arrive sorted)
// and builds the offsets index.
func NewUnkHandler(entries []UnkEntry, numCategories int, pool *stringPool) *UnkHandler {
	sorted := make([]UnkEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CateID < sorted[j].CateID })

	offsets := make([]uint32, numCategories+1)
	cur := 0
	for cate := 0; cate < numCategories; cate++ {
		offsets[cate] = uint32(cur)
		for cur < len(sorted) && int(sorted[cur].CateID) == cate {
			cur++
		}
	}
	offsets[numCategories] = uint32(cur)

	return &UnkHandler{offsets: offsets, entries: sorted, featurePool: pool}
}

// FromRawUnkEntries resolves each row's category name against cp and
// interns its feature string into pool, then builds a UnkHandler —
// the unk.def-row counterpart of Lexicon.FromEntries.
func FromRawUnkEntries(rows []RawUnkEntry, cp *CharProperty, pool *stringPool) (*UnkHandler, error) {
	entries := make([]UnkEntry, len(rows))
	for i, r := range rows {
		cateID, ok := cp.CateID(r.Category)
		if !ok {
			return nil, newErr(ErrInvalidArgument, fmt.Sprintf("unk.def row %d: unknown category %q", i, r.Category))
		}
		entries[i] = UnkEntry{
			CateID:    cateID,
			LeftID:    r.LeftID,
			RightID:   r.RightID,
			WordCost:  r.WordCost,
			FeatureID: pool.intern(r.Feature),
		}
	}
	return NewUnkHandler(entries, cp.NumCategories(), pool), nil
}

// EntriesForCategory returns every UnkEntry template registered for a
// base category id.
func (u *UnkHandler) EntriesForCategory(cateID uint8) []UnkEntry {
	return u.entries[u.offsets[cateID]:u.offsets[cateID+1]]
}

// Feature returns the feature string of an unknown-word entry.
func (u *UnkHandler) Feature(e UnkEntry) string {
	return u.featurePool.get(e.FeatureID)
}

// ApplyConnIdMapper rewrites every template's left/right connection ids
// in place through the mapper.
func (u *UnkHandler) ApplyConnIdMapper(m *ConnIdMapper) {
	for i := range u.entries {
		u.entries[i].LeftID = m.Left(u.entries[i].LeftID)
		u.entries[i].RightID = m.Right(u.entries[i].RightID)
	}
}

// UnkCandidate is one generated unknown-word candidate, ready to become a
// lattice edge.
type UnkCandidate struct {
	Entry   UnkEntry
	ID      uint32 // global index into the handler's flat entries array
	EndChar int    // exclusive end, relative to the query start
}

// EntryAt returns the UnkEntry at a global index previously handed out as
// an UnkCandidate.ID, for resolving its feature string after the fact.
func (u *UnkHandler) EntryAt(id uint32) UnkEntry { return u.entries[id] }

// GenUnkWords synthesizes candidate unknown-word tokens starting at
// startChar, following spec.md §4.3's policy exactly:
//
//   - if hasMatched and cinfos[startChar] does not require invocation,
//     nothing is generated;
//   - otherwise, for every category bit set on cinfos[startChar], emit one
//     candidate per UnkEntry in that category for every length from 1 up
//     to min(category max length, remaining characters) for which every
//     character in the span still carries that category bit;
//   - additionally, if the category is groupable and the run starting at
//     startChar is longer than the category's fixed length (and within
//     maxGroupingLen, when set), emit one candidate per UnkEntry spanning
//     the whole run.
func (u *UnkHandler) GenUnkWords(
	cp *CharProperty,
	cinfos []CharInfo,
	groupable []int,
	startChar int,
	hasMatched bool,
	maxGroupingLen *int,
	emit func(UnkCandidate),
) {
	info := cinfos[startChar]
	if hasMatched && !info.Invoke() {
		return
	}

	remaining := len(cinfos) - startChar
	cateset := info.CateIdset()

	for cate := 0; cate < cp.NumCategories(); cate++ {
		if cateset&(1<<uint(cate)) == 0 {
			continue
		}
		cinfo := cp.mustCategoryInfo(cate, cinfos, startChar)
		maxLen := int(cinfo.Length())
		if maxLen > remaining {
			maxLen = remaining
		}

		base := u.offsets[cate]
		entries := u.EntriesForCategory(uint8(cate))

		length := 1
		for ; length <= maxLen; length++ {
			if !spanSharesBit(cinfos, startChar, length, uint32(1)<<uint(cate)) {
				break
			}
			for i, e := range entries {
				emit(UnkCandidate{Entry: e, ID: base + uint32(i), EndChar: startChar + length})
			}
		}

		if cinfo.Group() {
			run := groupable[startChar]
			if run > int(cinfo.Length()) && (maxGroupingLen == nil || run <= *maxGroupingLen) {
				for i, e := range entries {
					emit(UnkCandidate{Entry: e, ID: base + uint32(i), EndChar: startChar + run})
				}
			}
		}
	}
}

// mustCategoryInfo resolves the canonical invoke/group/length shape
// registered for category id cate. A character's CharInfo carries
// Length()/Group() only for its own base category; when the character
// belongs to additional categories through its bitset, each one's shape
// is looked up from the category table instead.
func (cp *CharProperty) mustCategoryInfo(cate int, cinfos []CharInfo, startChar int) CharInfo {
	base := cinfos[startChar]
	if int(base.BaseID()) == cate {
		return base
	}
	if info, ok := cp.categoryShape[uint8(cate)]; ok {
		return info
	}
	return base
}

func spanSharesBit(cinfos []CharInfo, start, length int, bit uint32) bool {
	for i := start; i < start+length; i++ {
		if cinfos[i].CateIdset()&bit == 0 {
			return false
		}
	}
	return true
}
