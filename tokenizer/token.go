package tokenizer

import (
	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/lattice"
)

// Token is a read-only view over one lattice node produced by the last
// Tokenize/TokenizeNbest call: a reference back to its Worker plus the
// node itself. It stays valid only until the Worker's next
// ResetSentence/Tokenize call reuses the underlying buffers — callers
// that need to keep a token past that point should call ToBuf.
type Token struct {
	w  *Worker
	tn lattice.TopNode
}

// RangeChar returns the [start, end) character offsets this token spans.
func (t Token) RangeChar() (int, int) {
	return t.tn.Node.StartWord, t.tn.EndChar
}

// RangeByte returns the [start, end) byte offsets this token spans in
// the original input string.
func (t Token) RangeByte() (int, int) {
	start, end := t.RangeChar()
	return t.w.sentenceText().ByteRange(start, end)
}

// Surface returns the substring of the original input this token spans.
func (t Token) Surface() string {
	start, end := t.RangeChar()
	return t.w.sentenceText().Slice(start, end)
}

// WordIdx returns the (lexicon, id) pair identifying this token's
// dictionary entry.
func (t Token) WordIdx() dictionary.WordIdx { return t.tn.Node.WordIdx }

// WordParam returns this token's fixed cost parameters.
func (t Token) WordParam() dictionary.WordParam { return t.tn.Node.Param }

// LeftID, RightID and WordCost expose WordParam's fields individually
// for callers that don't need the whole struct.
func (t Token) LeftID() uint16  { return t.tn.Node.Param.LeftID }
func (t Token) RightID() uint16 { return t.tn.Node.Param.RightID }
func (t Token) WordCost() int16 { return t.tn.Node.Param.WordCost }

// Feature returns this token's feature string, resolved from whichever
// lexicon (system, user, or the unknown-word handler) WordIdx names.
func (t Token) Feature() string {
	idx := t.tn.Node.WordIdx
	dict := t.w.dictionary()
	switch idx.Type {
	case dictionary.LexSystem:
		return dict.SystemLexicon().Feature(idx.ID)
	case dictionary.LexUser:
		return dict.UserLexicon().Feature(idx.ID)
	default:
		return dict.UnkHandler().Feature(dict.UnkHandler().EntryAt(idx.ID))
	}
}

// IsUnknown reports whether this token came from unknown-word
// generation rather than a dictionary lookup.
func (t Token) IsUnknown() bool { return t.tn.Node.WordIdx.Type == dictionary.LexUnknown }

// BufToken is an owned copy of a Token's fields, valid independent of
// any Worker's lifetime — the result of ToBuf.
type BufToken struct {
	Surface            string
	Feature            string
	StartChar, EndChar int
	StartByte, EndByte int
	WordIdx            dictionary.WordIdx
	Param              dictionary.WordParam
	IsUnknown          bool
}

// ToBuf copies this token's fields out into an owned, Worker-independent
// value.
func (t Token) ToBuf() BufToken {
	startChar, endChar := t.RangeChar()
	startByte, endByte := t.RangeByte()
	return BufToken{
		Surface:   t.Surface(),
		Feature:   t.Feature(),
		StartChar: startChar,
		EndChar:   endChar,
		StartByte: startByte,
		EndByte:   endByte,
		WordIdx:   t.WordIdx(),
		Param:     t.WordParam(),
		IsUnknown: t.IsUnknown(),
	}
}
