package dictionary

import "math"

// LexType discriminates which lexicon a word came from.
type LexType uint8

const (
	LexSystem LexType = iota
	LexUser
	LexUnknown
)

func (t LexType) String() string {
	switch t {
	case LexSystem:
		return "system"
	case LexUser:
		return "user"
	case LexUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// InvalidWordID is the sentinel id reserved for BOS/EOS nodes.
const InvalidWordID = math.MaxUint32

// WordIdx is a stable (lexicon, id) pair identifying one word entry within
// a loaded dictionary. The value with ID = InvalidWordID (see
// SentinelWordIdx) is reserved for BOS/EOS sentinel nodes.
type WordIdx struct {
	Type LexType
	ID   uint32
}

// SentinelWordIdx returns the WordIdx used by BOS/EOS lattice nodes.
func SentinelWordIdx() WordIdx {
	return WordIdx{Type: LexSystem, ID: InvalidWordID}
}

// IsSentinel reports whether idx is the BOS/EOS sentinel.
func (idx WordIdx) IsSentinel() bool {
	return idx.ID == InvalidWordID
}

// WordParam is the fixed per-word cost component shared by every lexicon.
type WordParam struct {
	LeftID   uint16
	RightID  uint16
	WordCost int16
}

// RawWordEntry is the parser-level view of one lexicon row: a surface
// string, its WordParam, and an opaque feature string (never interpreted
// by the runtime — only stored and returned verbatim).
type RawWordEntry struct {
	Surface string
	Param   WordParam
	Feature string
}
