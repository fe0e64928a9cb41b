package lattice

import (
	"container/heap"
	"math"

	"github.com/vibratogo/vibrato/dictionary"
)

// pathNoNext marks the tail of a node's predecessor linked list.
const pathNoNext int32 = -1

// pathRecord is one entry of a node's predecessor linked list, arena
// allocated rather than heap-allocated per node — grounded on the same
// flattened-arena technique the dictionary trie uses for its edges.
type pathRecord struct {
	predEndPos int
	predIdx    int
	next       int32
}

// NBestNode is Lattice's Node plus the head of its full predecessor
// linked list — every edge that reached it during Viterbi forward search,
// not just the minimum-cost one, so A* can later explore alternates.
type NBestNode struct {
	Node
	lpathHead int32
}

// LatticeNBest mirrors Lattice but additionally records, for every node,
// every surviving predecessor edge (not just the Viterbi-minimal one),
// which is what lets NbestGenerator enumerate more than the single best
// path.
type LatticeNBest struct {
	ends  [][]NBestNode
	paths []pathRecord
	eos   NBestNode
}

// NewLatticeNBest allocates an N-best lattice sized for numChars
// characters.
func NewLatticeNBest(numChars int) *LatticeNBest {
	l := &LatticeNBest{}
	l.Reset(numChars)
	return l
}

// Reset clears and resizes the lattice for reuse, re-seeding BOS.
func (l *LatticeNBest) Reset(numChars int) {
	if cap(l.ends) < numChars+1 {
		l.ends = make([][]NBestNode, numChars+1)
	} else {
		l.ends = l.ends[:numChars+1]
		for i := range l.ends {
			l.ends[i] = l.ends[i][:0]
		}
	}
	l.ends[0] = append(l.ends[0], NBestNode{Node: bosNode(), lpathHead: pathNoNext})
	l.paths = l.paths[:0]
	l.eos = NBestNode{}
}

// EndsAt returns every node ending at character position i.
func (l *LatticeNBest) EndsAt(i int) []NBestNode { return l.ends[i] }

func (l *LatticeNBest) pushPath(head int32, predEndPos, predIdx int) int32 {
	idx := int32(len(l.paths))
	l.paths = append(l.paths, pathRecord{predEndPos: predEndPos, predIdx: predIdx, next: head})
	return idx
}

// InsertNode appends a node to ends[endWord] carrying the Viterbi-minimal
// predecessor (for the admissible min_cost heuristic), while additionally
// chaining every predecessor in ends[startNode] into its full path list so
// NbestGenerator can later consider non-minimal attachments too.
func (l *LatticeNBest) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, conn dictionary.Connector) {
	left := l.ends[startNode]
	minCost := int32(math.MaxInt32)
	minIdx := 0
	head := pathNoNext
	for i, p := range left {
		cost := p.MinCost + conn.Cost(p.RightID, param.LeftID) + int32(param.WordCost)
		head = l.pushPath(head, startNode, i)
		if cost <= minCost {
			minCost = cost
			minIdx = i
		}
	}
	l.ends[endWord] = append(l.ends[endWord], NBestNode{
		Node: Node{
			WordIdx:   wordIdx,
			Param:     param,
			StartNode: startNode,
			StartWord: startWord,
			LeftID:    param.LeftID,
			RightID:   param.RightID,
			MinCost:   minCost,
			MinIdx:    minIdx,
		},
		lpathHead: head,
	})
}

// InsertEOS creates the EOS node with a full predecessor path list over
// ends[startNode], mirroring InsertNode.
func (l *LatticeNBest) InsertEOS(startNode int, conn dictionary.Connector) {
	left := l.ends[startNode]
	minCost := int32(math.MaxInt32)
	minIdx := 0
	head := pathNoNext
	for i, p := range left {
		cost := p.MinCost + conn.Cost(p.RightID, BOSEOSConnectionID)
		head = l.pushPath(head, startNode, i)
		if cost <= minCost {
			minCost = cost
			minIdx = i
		}
	}
	l.eos = NBestNode{
		Node: Node{
			WordIdx:   dictionary.SentinelWordIdx(),
			StartNode: startNode,
			LeftID:    BOSEOSConnectionID,
			RightID:   math.MaxUint16,
			MinCost:   minCost,
			MinIdx:    minIdx,
		},
		lpathHead: head,
	}
}

// EOSCost returns the 1-best path cost, for callers that want it without
// running the A* search.
func (l *LatticeNBest) EOSCost() int32 { return l.eos.MinCost }

// nodeRef addresses either a regular lattice position (endPos, idx) or
// the EOS sentinel (endPos == eosEndPos).
type nodeRef struct {
	endPos int
	idx    int
}

const eosEndPos = -1

func (l *LatticeNBest) nodeAt(r nodeRef) NBestNode {
	if r.endPos == eosEndPos {
		return l.eos
	}
	return l.ends[r.endPos][r.idx]
}

// trail is a cons-list recording the path discovered so far, tail-to-head
// from EOS toward BOS — an arena would be overkill here since trails are
// short-lived (GC'd once their heap entries are popped or abandoned), but
// it is allocated the same way the dictionary's posting/path arenas are
// conceptually shaped: append-only, indexed by reference rather than
// copied.
type trail struct {
	ref    nodeRef
	parent *trail
}

// astarState is one entry of the A* priority queue: a hypothesis that has
// reached ref with accumulated backward cost g; priority is g plus ref's
// forward min_cost, an admissible estimate of the remaining cost to BOS.
type astarState struct {
	ref      nodeRef
	g        int32
	priority int32
	path     *trail
}

type astarHeap []astarState

func (h astarHeap) Len() int            { return len(h) }
func (h astarHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h astarHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *astarHeap) Push(x interface{}) { *h = append(*h, x.(astarState)) }
func (h *astarHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NbestGenerator enumerates lattice paths in non-decreasing total-cost
// order via A* search backward from EOS to BOS, per spec.md §4.9. Each
// call to Next returns the next-best path's tokens in forward order, or
// ok == false once the search space is exhausted.
type NbestGenerator struct {
	l    *LatticeNBest
	conn dictionary.Connector
	pq   astarHeap
}

// NewNbestGenerator starts an A* search over l using conn for connection
// costs.
func NewNbestGenerator(l *LatticeNBest, conn dictionary.Connector) *NbestGenerator {
	g := &NbestGenerator{l: l, conn: conn}
	eos := nodeRef{endPos: eosEndPos}
	heap.Push(&g.pq, astarState{ref: eos, g: 0, priority: l.eos.MinCost, path: &trail{ref: eos}})
	return g
}

// Next pops states until a BOS-rooted hypothesis is found, returning its
// nodes (paired with their end-character position) in forward
// (BOS-to-EOS) order, excluding the BOS/EOS sentinels themselves, along
// with the path's total cost.
func (g *NbestGenerator) Next() (nodes []TopNode, totalCost int32, ok bool) {
	for g.pq.Len() > 0 {
		cur := heap.Pop(&g.pq).(astarState)
		curNode := g.l.nodeAt(cur.ref)

		if curNode.StartNode == NoStartNode {
			return reconstructPath(g.l, cur.path), cur.priority, true
		}

		for p := curNode.lpathHead; p != pathNoNext; p = g.l.paths[p].next {
			rec := g.l.paths[p]
			predRef := nodeRef{endPos: rec.predEndPos, idx: rec.predIdx}
			pred := g.l.nodeAt(predRef)
			newG := cur.g + g.conn.Cost(pred.RightID, curNode.LeftID) + int32(curNode.Param.WordCost)
			heap.Push(&g.pq, astarState{
				ref:      predRef,
				g:        newG,
				priority: newG + pred.MinCost,
				path:     &trail{ref: predRef, parent: cur.path},
			})
		}
	}
	return nil, 0, false
}

// reconstructPath walks a trail starting at its BOS-adjacent node (tail
// is the state that just popped as BOS) through successive parents toward
// EOS. Because the search runs backward from EOS, a trail's parent chain
// already visits real words in forward (BOS-to-EOS) sentence order —
// reconstructPath only needs to drop the BOS/EOS sentinels themselves.
func reconstructPath(l *LatticeNBest, tail *trail) []TopNode {
	var nodes []TopNode
	for t := tail; t != nil; t = t.parent {
		if t.ref.endPos == eosEndPos {
			continue
		}
		n := l.nodeAt(t.ref)
		if n.StartNode == NoStartNode {
			continue
		}
		nodes = append(nodes, TopNode{EndChar: t.ref.endPos, Node: n.Node})
	}
	return nodes
}
