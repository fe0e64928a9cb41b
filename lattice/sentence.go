// Package lattice builds and searches the word lattice a tokenizer walks
// over one input string: per-character metadata (Sentence), the Viterbi
// node arena (Lattice), and its N-best-capable counterpart (LatticeNBest).
package lattice

import "github.com/vibratogo/vibrato/dictionary"

// Sentence is a per-worker scratch object holding precomputed
// per-character metadata for one input string, re-used across calls via
// Reset to avoid reallocating on every tokenization.
type Sentence struct {
	input string
	chars []rune
	// c2b[i] is the byte offset of chars[i]; c2b[len(chars)] is the total
	// byte length of input.
	c2b    []int
	cinfos []dictionary.CharInfo
	// groupable[i] = k iff cinfos[i:i+k] all share at least one common
	// category bit (a maximal run starting at i).
	groupable []int
}

// NewSentence returns an empty Sentence ready for Compile.
func NewSentence() *Sentence {
	return &Sentence{}
}

// Compile runs the three passes spec.md §4.7 describes: populate
// chars/c2b from input's char_indices, fetch each char's CharInfo, then
// compute groupable right-to-left.
func (s *Sentence) Compile(input string, cp *dictionary.CharProperty) {
	s.input = input
	s.chars = s.chars[:0]
	s.c2b = s.c2b[:0]

	for i, r := range input {
		s.c2b = append(s.c2b, i)
		s.chars = append(s.chars, r)
	}
	s.c2b = append(s.c2b, len(input))

	n := len(s.chars)
	if cap(s.cinfos) < n {
		s.cinfos = make([]dictionary.CharInfo, n)
	} else {
		s.cinfos = s.cinfos[:n]
	}
	for i, r := range s.chars {
		s.cinfos[i] = cp.CharInfoAt(r)
	}

	if cap(s.groupable) < n {
		s.groupable = make([]int, n)
	} else {
		s.groupable = s.groupable[:n]
	}
	for i := n - 1; i >= 0; i-- {
		if i == n-1 {
			s.groupable[i] = 1
			continue
		}
		if s.cinfos[i].CateIdset()&s.cinfos[i+1].CateIdset() != 0 {
			s.groupable[i] = s.groupable[i+1] + 1
		} else {
			s.groupable[i] = 1
		}
	}
}

// NumChars returns how many characters the compiled input holds.
func (s *Sentence) NumChars() int { return len(s.chars) }

// CharAt returns the rune at character position i.
func (s *Sentence) CharAt(i int) rune { return s.chars[i] }

// CharInfoAt returns the precomputed CharInfo at character position i.
func (s *Sentence) CharInfoAt(i int) dictionary.CharInfo { return s.cinfos[i] }

// CharInfos returns the full precomputed CharInfo slice.
func (s *Sentence) CharInfos() []dictionary.CharInfo { return s.cinfos }

// Groupable returns the precomputed groupable-run-length slice.
func (s *Sentence) Groupable() []int { return s.groupable }

// GroupableAt returns the maximal same-category run length starting at i.
func (s *Sentence) GroupableAt(i int) int { return s.groupable[i] }

// ByteRange returns the [start, end) byte offsets spanned by character
// positions [startChar, endChar).
func (s *Sentence) ByteRange(startChar, endChar int) (int, int) {
	return s.c2b[startChar], s.c2b[endChar]
}

// Slice returns the substring of the original input spanning character
// positions [startChar, endChar).
func (s *Sentence) Slice(startChar, endChar int) string {
	b0, b1 := s.ByteRange(startChar, endChar)
	return s.input[b0:b1]
}

// RunesFrom returns the rune slice starting at character position i —
// the view CommonPrefixIterate and GenUnkWords need.
func (s *Sentence) RunesFrom(i int) []rune { return s.chars[i:] }
