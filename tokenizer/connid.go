package tokenizer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/vibratogo/vibrato/dictionary"
)

// connIDCounter tallies how often each left/right connection id is used
// across a corpus of tokenizations, the raw material an offline tool
// needs to build a cache-locality connection-id reordering — spec.md
// §4.11's init_connid_counter/update_connid_counts.
type connIDCounter struct {
	left, right []uint64
}

func newConnIDCounter(numLeft, numRight uint16) *connIDCounter {
	return &connIDCounter{left: make([]uint64, numLeft), right: make([]uint64, numRight)}
}

func (c *connIDCounter) update(leftID, rightID uint16) {
	c.left[leftID]++
	c.right[rightID]++
}

// ConnIDCounter is the exported handle a caller collects counts into
// (one per Worker, merged afterward) and eventually turns into a
// reordering via BuildConnIdMapper.
type ConnIDCounter struct{ c *connIDCounter }

// NewConnIDCounter allocates an empty counter sized for a connector's id
// space, typically used as the accumulator several workers' per-call
// counters are merged into.
func NewConnIDCounter(numLeft, numRight uint16) *ConnIDCounter {
	return &ConnIDCounter{c: newConnIDCounter(numLeft, numRight)}
}

// LeftCounts returns the raw per-left-id usage tally.
func (c *ConnIDCounter) LeftCounts() []uint64 { return append([]uint64(nil), c.c.left...) }

// RightCounts returns the raw per-right-id usage tally.
func (c *ConnIDCounter) RightCounts() []uint64 { return append([]uint64(nil), c.c.right...) }

// Merge folds other's counts into c in place, for combining several
// workers' independently accumulated tallies.
func (c *ConnIDCounter) Merge(other *ConnIDCounter) {
	for i, v := range other.c.left {
		c.c.left[i] += v
	}
	for i, v := range other.c.right {
		c.c.right[i] += v
	}
}

// computeConnIDProbs normalizes raw counts into probabilities (0 when
// the total is 0) — spec.md §4.11's compute_connid_probs.
func computeConnIDProbs(counts []uint64) []float64 {
	var total uint64
	for _, c := range counts {
		total += c
	}
	probs := make([]float64, len(counts))
	if total == 0 {
		return probs
	}
	for i, c := range counts {
		probs[i] = float64(c) / float64(total)
	}
	return probs
}

// BuildConnIdMapper derives a frequency-descending reordering from
// accumulated counts: the most-used ids are renumbered first, so a
// dictionary rewritten through the resulting ConnIdMapper packs its hot
// connection rows together for better cache locality. Id 0 (the BOS/EOS
// sentinel) is always kept at 0.
func BuildConnIdMapper(counter *ConnIDCounter) (*dictionary.ConnIdMapper, error) {
	left := rankByFrequency(counter.c.left)
	right := rankByFrequency(counter.c.right)
	return dictionary.NewConnIdMapper(left, right)
}

// rankByFrequency returns, for each old id, the new id it should move
// to: ids other than 0 sorted by descending count (ties broken by
// ascending old id for determinism), with id 0 pinned in place.
func rankByFrequency(counts []uint64) []uint16 {
	n := len(counts)
	order := make([]uint16, 0, n-1)
	for id := 1; id < n; id++ {
		order = append(order, uint16(id))
	}
	// Simple insertion sort: n is the connection-id space, typically a
	// few thousand entries — not hot enough to need anything fancier.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	perm := make([]uint16, n)
	for newID, oldID := range order {
		perm[oldID] = uint16(newID + 1)
	}
	return perm
}

// WriteConnIDMap writes perm and its source counts out in the
// `<new-id>\t<probability>`-per-line format LoadConnIDMap reads back —
// one line per *old* id, in old-id order, matching spec.md §6's
// .lmap/.rmap layout.
func WriteConnIDMap(w io.Writer, perm []uint16, counts []uint64) error {
	probs := computeConnIDProbs(counts)
	bw := bufio.NewWriter(w)
	for old, newID := range perm {
		if _, err := fmt.Fprintf(bw, "%d\t%g\n", newID, probs[old]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
