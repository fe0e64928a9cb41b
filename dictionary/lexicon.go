package dictionary

import (
	"fmt"
	"os"
	"sort"
)

// Postings packs, for every trie terminal, a length followed by that many
// word ids — the flat encoding spec.md §3 mandates so that homographs
// (several entries sharing one surface) fan out from a single trie node.
type Postings struct {
	data []uint32
}

// Get returns the word ids stored at the posting group beginning at
// offset, in ascending posting-list-position order.
func (p *Postings) Get(offset uint32) []uint32 {
	n := p.data[offset]
	return p.data[offset+1 : offset+1+n]
}

// postingsBuilder accumulates posting-list groups in insertion order and
// returns the offset of each group as it is appended.
type postingsBuilder struct {
	data []uint32
}

func (b *postingsBuilder) append(ids []uint32) uint32 {
	offset := uint32(len(b.data))
	b.data = append(b.data, uint32(len(ids)))
	b.data = append(b.data, ids...)
	return offset
}

func (b *postingsBuilder) build() *Postings {
	return &Postings{data: b.data}
}

// LexMatch is one result of a common-prefix lookup: a candidate word, its
// fixed cost parameters, and the character offset (exclusive, relative to
// the query's start) where it ends.
type LexMatch struct {
	WordIdx   WordIdx
	WordParam WordParam
	EndChar   int
}

// Lexicon is an indexed store of word entries sharing one LexType: a
// common-prefix trie over surfaces, a posting list fanning out to word
// ids for homographs, and parallel per-word-id arrays of fixed params and
// feature strings.
type Lexicon struct {
	lexType  LexType
	trie     *Trie
	postings *Postings
	params   []WordParam
	// featureID[i] indexes into featurePool for word i's feature string.
	// Grounded on the teacher's MorphInfo.{LemmaID,TagsID}: variable-length
	// text never lives in the fixed, zero-copy-friendly per-word arrays —
	// only a pool index does.
	featureID   []uint32
	featurePool *stringPool
}

// NumWords returns how many word entries this lexicon holds.
func (lx *Lexicon) NumWords() int { return len(lx.params) }

// LexType returns which lexicon kind this is (System/User/Unknown).
func (lx *Lexicon) LexType() LexType { return lx.lexType }

// WordParamAt returns the fixed cost parameters of word id.
func (lx *Lexicon) WordParamAt(id uint32) WordParam { return lx.params[id] }

// Feature returns the feature string of word id.
func (lx *Lexicon) Feature(id uint32) string { return lx.featurePool.get(lx.featureID[id]) }

// FromEntries builds a Lexicon from parser-level raw entries, preserving
// each entry's original index as its word id (so several entries sharing
// a surface share one trie terminal but keep distinct, stable ids).
// Empty-surface rows are skipped with a warning to stderr rather than
// erroring, per the documented partial-failure policy.
func FromEntries(entries []RawWordEntry, lexType LexType, pool *stringPool) (*Lexicon, error) {
	params := make([]WordParam, len(entries))
	featureID := make([]uint32, len(entries))

	bySurface := make(map[string][]uint32)
	order := make([]string, 0)
	for i, e := range entries {
		if e.Surface == "" {
			fmt.Fprintf(os.Stderr, "warning: skipping empty-surface lexicon row at index %d\n", i)
			continue
		}
		params[i] = e.Param
		featureID[i] = pool.intern(e.Feature)
		if _, seen := bySurface[e.Surface]; !seen {
			order = append(order, e.Surface)
		}
		bySurface[e.Surface] = append(bySurface[e.Surface], uint32(i))
	}
	sort.Strings(order)

	var builder postingsBuilder
	offsets := make([]uint32, len(order))
	for i, surface := range order {
		ids := bySurface[surface]
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		offsets[i] = builder.append(ids)
	}

	trie := buildTrie(order, offsets)

	return &Lexicon{
		lexType:     lexType,
		trie:        trie,
		postings:    builder.build(),
		params:      params,
		featureID:   featureID,
		featurePool: pool,
	}, nil
}

// Validate checks the load-time invariant that every word's left/right
// connection ids are within the connector's declared bounds.
func (lx *Lexicon) Validate(conn Connector) error {
	numLeft := conn.NumLeft()
	numRight := conn.NumRight()
	for i, p := range lx.params {
		if p.LeftID >= numLeft {
			return newErr(ErrInvalidState, fmt.Sprintf("%s word %d: left_id %d >= num_left %d", lx.lexType, i, p.LeftID, numLeft))
		}
		if p.RightID >= numRight {
			return newErr(ErrInvalidState, fmt.Sprintf("%s word %d: right_id %d >= num_right %d", lx.lexType, i, p.RightID, numRight))
		}
	}
	return nil
}

// CommonPrefixIterate invokes fn for every dictionary entry whose surface
// is a prefix of chars, in trie-traversal (non-decreasing EndChar) order;
// word-ids sharing a trie node are yielded in ascending posting order.
// Iteration stops early if fn returns false.
func (lx *Lexicon) CommonPrefixIterate(chars []rune, fn func(LexMatch) bool) {
	lx.trie.walkPrefixes(chars, func(postingOffset uint32, endChar int) bool {
		for _, id := range lx.postings.Get(postingOffset) {
			m := LexMatch{
				WordIdx:   WordIdx{Type: lx.lexType, ID: id},
				WordParam: lx.params[id],
				EndChar:   endChar,
			}
			if !fn(m) {
				return false
			}
		}
		return true
	})
}

// ApplyConnIdMapper rewrites every word's left/right connection ids
// in place through the mapper — called once at dictionary build time,
// before serialization.
func (lx *Lexicon) ApplyConnIdMapper(m *ConnIdMapper) {
	for i := range lx.params {
		lx.params[i].LeftID = m.Left(lx.params[i].LeftID)
		lx.params[i].RightID = m.Right(lx.params[i].RightID)
	}
}
