package lattice

import (
	"math"

	"github.com/vibratogo/vibrato/dictionary"
)

// BOSEOSConnectionID is the reserved connection id sentinel BOS/EOS nodes
// use on their sentence-facing side.
const BOSEOSConnectionID uint16 = 0

// NoPredecessor marks a node with no predecessor in its end-position list
// — the BOS sentinel, and nowhere else.
const NoPredecessor = -1

// NoStartNode marks the BOS sentinel's StartNode, matching spec.md's
// usize::MAX sentinel in spirit (there is no valid predecessor position).
const NoStartNode = -1

// Node is one lattice vertex: a dictionary word occupying [StartWord,
// end) at some end-position, plus the Viterbi bookkeeping needed to
// recover the minimum-cost path once the lattice is complete.
type Node struct {
	WordIdx dictionary.WordIdx
	Param   dictionary.WordParam

	// StartNode is the lattice position this node's best edge attaches
	// from — usually StartWord, but may precede it when the tokenizer
	// skipped over ignored space characters while still retaining the
	// last non-space position as the attachment point.
	StartNode int
	StartWord int

	LeftID, RightID uint16

	// MinCost is the best path cost from BOS to this node; MinIdx is the
	// index, within ends[StartNode], of the predecessor that achieves it.
	MinCost int32
	MinIdx  int
}

func bosNode() Node {
	return Node{
		WordIdx:   dictionary.SentinelWordIdx(),
		StartNode: NoStartNode,
		RightID:   BOSEOSConnectionID,
		MinCost:   0,
		MinIdx:    NoPredecessor,
	}
}

// Lattice is the 1-best Viterbi lattice: for each character position i,
// ends[i] holds every node whose word ends there.
type Lattice struct {
	ends [][]Node
	eos  Node
}

// NewLattice allocates a Lattice sized for a sentence of numChars
// characters, with the BOS sentinel seeded at position 0.
func NewLattice(numChars int) *Lattice {
	l := &Lattice{ends: make([][]Node, numChars+1)}
	l.Reset(numChars)
	return l
}

// Reset clears and resizes the lattice for reuse by a new sentence of
// numChars characters, re-seeding the BOS sentinel.
func (l *Lattice) Reset(numChars int) {
	if cap(l.ends) < numChars+1 {
		l.ends = make([][]Node, numChars+1)
	} else {
		l.ends = l.ends[:numChars+1]
		for i := range l.ends {
			l.ends[i] = l.ends[i][:0]
		}
	}
	l.ends[0] = append(l.ends[0], bosNode())
	l.eos = Node{}
}

// EndsAt returns every node ending at character position i — used by the
// tokenizer to test step 1 of spec.md §4.8 ("if ends[start_word] is
// empty, advance by one and continue").
func (l *Lattice) EndsAt(i int) []Node { return l.ends[i] }

// InsertNode scans every node in ends[startNode], computes the cost of
// extending each to this candidate word, and appends a new node to
// ends[endWord] carrying the minimum. Ties are broken by preferring the
// *later* entry in ends[startNode] (equivalent to a <= comparison),
// matching MeCab's empirically observed behavior.
func (l *Lattice) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, conn dictionary.Connector) {
	left := l.ends[startNode]
	minCost := int32(math.MaxInt32)
	minIdx := 0
	for i, p := range left {
		cost := p.MinCost + conn.Cost(p.RightID, param.LeftID) + int32(param.WordCost)
		if cost <= minCost {
			minCost = cost
			minIdx = i
		}
	}
	l.ends[endWord] = append(l.ends[endWord], Node{
		WordIdx:   wordIdx,
		Param:     param,
		StartNode: startNode,
		StartWord: startWord,
		LeftID:    param.LeftID,
		RightID:   param.RightID,
		MinCost:   minCost,
		MinIdx:    minIdx,
	})
}

// InsertEOS creates the EOS sentinel node, choosing the best predecessor
// in ends[startNode] exactly as InsertNode does, using
// BOSEOSConnectionID as the synthetic left-id.
func (l *Lattice) InsertEOS(startNode int, conn dictionary.Connector) {
	left := l.ends[startNode]
	minCost := int32(math.MaxInt32)
	minIdx := 0
	for i, p := range left {
		cost := p.MinCost + conn.Cost(p.RightID, BOSEOSConnectionID)
		if cost <= minCost {
			minCost = cost
			minIdx = i
		}
	}
	l.eos = Node{
		WordIdx:   dictionary.SentinelWordIdx(),
		StartNode: startNode,
		LeftID:    BOSEOSConnectionID,
		RightID:   math.MaxUint16,
		MinCost:   minCost,
		MinIdx:    minIdx,
	}
}

// EOSCost returns the total path cost of the 1-best segmentation — equal
// to EOS.min_cost in spec.md's terms.
func (l *Lattice) EOSCost() int32 { return l.eos.MinCost }

// TopNode is one node of the backtraced 1-best path, along with the
// character position it ends at.
type TopNode struct {
	EndChar int
	Node    Node
}

// Backtrace follows MinIdx pointers from EOS to BOS, returning nodes in
// reverse (EOS-to-BOS) order — the same order spec.md's top_nodes is
// stored in; Worker.Token flips the index to present forward order.
func (l *Lattice) Backtrace() []TopNode {
	var out []TopNode
	cur := l.eos
	for {
		predPos := cur.StartNode
		pred := l.ends[predPos][cur.MinIdx]
		if pred.StartNode == NoStartNode {
			break
		}
		out = append(out, TopNode{EndChar: predPos, Node: pred})
		cur = pred
	}
	return out
}
