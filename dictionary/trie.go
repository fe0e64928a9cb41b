package dictionary

import "sort"

// trieNode is the build-time, pointer-based representation of one trie
// node — mirrors the teacher's recursive Node, but the payload is a single
// posting-list offset rather than an arbitrary slice of interface values.
type trieNode struct {
	children      map[rune]*trieNode
	isFinal       bool
	postingOffset uint32
}

// FlatTrieNode is the "flattened" on-disk/in-memory representation of one
// trie node: instead of a pointer map, children live in a contiguous
// window of the global edge array, addressed by (EdgesIdx, EdgesLen) —
// the same scheme the teacher uses for its DAWG's FlatNode.
type FlatTrieNode struct {
	EdgesIdx      uint32
	EdgesLen      uint32
	PostingOffset uint32
	IsFinal       bool
}

// FlatTrieEdge is one outgoing transition: the character consumed and the
// id of the node it leads to. Edges belonging to one node are stored
// contiguously and sorted by Char so traversal can binary-search them —
// the teacher's findChildGeneral optimization, carried over unchanged.
type FlatTrieEdge struct {
	Char   rune
	NodeID uint32
}

// Trie is a common-prefix trie over rune sequences, flattened into two
// arrays for compact storage and mmap-friendly zero-copy loading.
type Trie struct {
	Nodes []FlatTrieNode
	Edges []FlatTrieEdge
}

// buildTrie inserts every (surface, postingOffset) pair into a pointer
// trie, then flattens it. Surfaces must already be deduplicated by the
// caller (each maps to exactly one posting offset).
func buildTrie(surfaces []string, postingOffsets []uint32) *Trie {
	root := &trieNode{children: make(map[rune]*trieNode)}
	for i, surface := range surfaces {
		n := root
		for _, r := range surface {
			child, ok := n.children[r]
			if !ok {
				child = &trieNode{children: make(map[rune]*trieNode)}
				n.children[r] = child
			}
			n = child
		}
		n.isFinal = true
		n.postingOffset = postingOffsets[i]
	}
	return flattenTrie(root)
}

// flattenTrie performs a breadth-first walk of the pointer trie, assigning
// sequential node ids and packing sorted outgoing edges into one array.
func flattenTrie(root *trieNode) *Trie {
	nodes := []FlatTrieNode{{}}
	edges := []FlatTrieEdge{}
	queue := []*trieNode{root}

	for head := 0; head < len(queue); head++ {
		n := queue[head]

		chars := make([]rune, 0, len(n.children))
		for r := range n.children {
			chars = append(chars, r)
		}
		sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

		edgesIdx := uint32(len(edges))
		for _, r := range chars {
			childID := uint32(len(nodes))
			nodes = append(nodes, FlatTrieNode{})
			queue = append(queue, n.children[r])
			edges = append(edges, FlatTrieEdge{Char: r, NodeID: childID})
		}

		nodes[head] = FlatTrieNode{
			EdgesIdx:      edgesIdx,
			EdgesLen:      uint32(len(chars)),
			PostingOffset: n.postingOffset,
			IsFinal:       n.isFinal,
		}
	}

	return &Trie{Nodes: nodes, Edges: edges}
}

// findChild looks up the child of nodeID reached by character r, using a
// binary search over that node's sorted edge window.
func (t *Trie) findChild(nodeID uint32, r rune) (uint32, bool) {
	node := t.Nodes[nodeID]
	if node.EdgesLen == 0 {
		return 0, false
	}
	window := t.Edges[node.EdgesIdx : node.EdgesIdx+node.EdgesLen]
	i := sort.Search(len(window), func(i int) bool { return window[i].Char >= r })
	if i < len(window) && window[i].Char == r {
		return window[i].NodeID, true
	}
	return 0, false
}

// walkPrefixes walks chars from the root, invoking fn for every trie node
// along the path that is final (i.e. a surface ending there), with the
// 1-based count of characters consumed. Stops early if fn returns false,
// or once no further edge matches.
func (t *Trie) walkPrefixes(chars []rune, fn func(postingOffset uint32, endChar int) bool) {
	node := uint32(0)
	for i, r := range chars {
		next, ok := t.findChild(node, r)
		if !ok {
			return
		}
		node = next
		if t.Nodes[node].IsFinal {
			if !fn(t.Nodes[node].PostingOffset, i+1) {
				return
			}
		}
	}
}
