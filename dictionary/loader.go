package dictionary

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// FromPath loads a Dictionary from disk, per spec.md §6's loader contract:
//
//  1. open the file and mmap it read-only;
//  2. if mode is TrustCache and a proof file for this exact (path, size,
//     mtime) already exists, skip the structural walk and parse directly;
//  3. otherwise run the full structural walk (validateFull) before
//     returning anything to the caller, then record a proof file so the
//     next TrustCache load can skip it;
//  4. if mmap fails (e.g. the filesystem doesn't support it), fall back to
//     reading the whole file onto the heap — correctness is unaffected,
//     only the zero-copy property is lost.
//
// The returned Dictionary's Close releases the mmap region, if any.
func FromPath(path string, mode LoadMode, strategy CacheStrategy) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, wrapErr(ErrIO, "opening dictionary file", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, wrapErr(ErrIO, "statting dictionary file", err)
	}
	hash := metaHash(path, info)
	trustCache := mode == TrustCache && hasProof(path, hash, strategy)

	region, mmapErr := mmap.Map(file, mmap.RDONLY, 0)
	var data []byte
	var closer func() error
	if mmapErr != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, wrapErr(ErrIO, "reading dictionary file after mmap failure", err)
		}
	} else {
		data = region
		closer = func() error { return region.Unmap() }
	}

	dict, err := Read(data)
	if err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, err
	}
	dict.mmapCloser = closer

	if !trustCache {
		if err := validateFull(dict); err != nil {
			_ = dict.Close()
			return nil, err
		}
		_ = writeProof(path, hash, strategy)
	}

	return dict, nil
}

// validateFull walks every table a loaded Dictionary carries, checking the
// structural invariants Read's per-section bounds checks cannot see on
// their own: trie edge windows are sorted and point at in-range node ids,
// every posting offset a final trie node names resolves to an in-range
// posting group, and every word/unk entry's connection ids fall within the
// connector's declared bounds (spec.md §8 invariant 1).
func validateFull(d *Dictionary) error {
	for _, lx := range []*Lexicon{d.systemLexicon, d.userLexicon} {
		if lx == nil {
			continue
		}
		if err := validateTrie(lx.trie, lx.postings, len(lx.params)); err != nil {
			return wrapErr(ErrInvalidState, fmt.Sprintf("%s lexicon", lx.lexType), err)
		}
	}
	return d.validateConsistency()
}

func validateTrie(t *Trie, postings *Postings, numWords int) error {
	for i, n := range t.Nodes {
		if n.EdgesLen == 0 {
			continue
		}
		if int64(n.EdgesIdx)+int64(n.EdgesLen) > int64(len(t.Edges)) {
			return fmt.Errorf("node %d: edge window out of range", i)
		}
		window := t.Edges[n.EdgesIdx : n.EdgesIdx+n.EdgesLen]
		for j, e := range window {
			if int(e.NodeID) >= len(t.Nodes) {
				return fmt.Errorf("node %d edge %d: child node id %d out of range", i, j, e.NodeID)
			}
			if j > 0 && window[j-1].Char >= e.Char {
				return fmt.Errorf("node %d: edges not strictly sorted by char", i)
			}
		}
		if n.IsFinal {
			if int(n.PostingOffset) >= len(postings.data) {
				return fmt.Errorf("node %d: posting offset out of range", i)
			}
			for _, id := range postings.Get(n.PostingOffset) {
				if int(id) >= numWords {
					return fmt.Errorf("node %d: posting word id %d out of range", i, id)
				}
			}
		}
	}
	return nil
}
