package tokenizer

import (
	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/lattice"
)

// latticeInserter is the subset of Lattice/LatticeNBest's API the
// construction loop needs, so it can be written once and run against
// either — the 1-best and N-best lattices only differ in how much
// predecessor bookkeeping they keep per node.
type latticeInserter interface {
	endsEmpty(i int) bool
	InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, conn dictionary.Connector)
	InsertEOS(startNode int, conn dictionary.Connector)
}

type latticeAdapter struct{ l *lattice.Lattice }

func (a latticeAdapter) endsEmpty(i int) bool { return len(a.l.EndsAt(i)) == 0 }
func (a latticeAdapter) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, conn dictionary.Connector) {
	a.l.InsertNode(startNode, startWord, endWord, wordIdx, param, conn)
}
func (a latticeAdapter) InsertEOS(startNode int, conn dictionary.Connector) {
	a.l.InsertEOS(startNode, conn)
}

type nbestLatticeAdapter struct{ l *lattice.LatticeNBest }

func (a nbestLatticeAdapter) endsEmpty(i int) bool { return len(a.l.EndsAt(i)) == 0 }
func (a nbestLatticeAdapter) InsertNode(startNode, startWord, endWord int, wordIdx dictionary.WordIdx, param dictionary.WordParam, conn dictionary.Connector) {
	a.l.InsertNode(startNode, startWord, endWord, wordIdx, param, conn)
}
func (a nbestLatticeAdapter) InsertEOS(startNode int, conn dictionary.Connector) {
	a.l.InsertEOS(startNode, conn)
}

// runLatticeConstruction walks the compiled sentence left to right. At
// every lattice position holding at least one predecessor (ends[pos] not
// empty), it optionally skips a run of ignored space characters to find
// where the next word may actually start, then enumerates every
// dictionary match (user lexicon first, then system) plus every
// unknown-word candidate there, inserting each as a lattice edge that
// still attaches back to pos — spec.md §4.8's construction loop. ins is
// either a latticeAdapter or nbestLatticeAdapter so the same loop serves
// both the 1-best and N-best lattices. counter may be nil; when non-nil
// it tallies how often each connection id is used, for the offline
// reorder pass.
func runLatticeConstruction(tok *Tokenizer, sentence *lattice.Sentence, ins latticeInserter, counter *connIDCounter) {
	dict := tok.dict
	conn := dict.Connector()
	cp := dict.CharProperty()
	cinfos := sentence.CharInfos()
	groupable := sentence.Groupable()
	numChars := sentence.NumChars()

	insertMatch := func(attachPos, wordStart int, m dictionary.LexMatch) {
		ins.InsertNode(attachPos, wordStart, wordStart+m.EndChar, m.WordIdx, m.WordParam, conn)
		if counter != nil {
			counter.update(m.WordParam.LeftID, m.WordParam.RightID)
		}
	}

	for attachPos := 0; attachPos < numChars; attachPos++ {
		if ins.endsEmpty(attachPos) {
			continue
		}

		wordStart := attachPos
		if tok.cfg.ignoreSpace && cinfos[wordStart].CateIdset()&tok.cfg.spaceMask != 0 {
			wordStart += groupable[wordStart]
		}
		if wordStart >= numChars {
			continue
		}

		hasMatched := false

		if user := dict.UserLexicon(); user != nil {
			user.CommonPrefixIterate(sentence.RunesFrom(wordStart), func(m dictionary.LexMatch) bool {
				insertMatch(attachPos, wordStart, m)
				hasMatched = true
				return true
			})
		}

		dict.SystemLexicon().CommonPrefixIterate(sentence.RunesFrom(wordStart), func(m dictionary.LexMatch) bool {
			insertMatch(attachPos, wordStart, m)
			hasMatched = true
			return true
		})

		dict.UnkHandler().GenUnkWords(cp, cinfos, groupable, wordStart, hasMatched, tok.cfg.maxGroupingLen, func(c dictionary.UnkCandidate) {
			wordIdx := dictionary.WordIdx{Type: dictionary.LexUnknown, ID: c.ID}
			param := dictionary.WordParam{LeftID: c.Entry.LeftID, RightID: c.Entry.RightID, WordCost: c.Entry.WordCost}
			ins.InsertNode(attachPos, wordStart, wordStart+c.EndChar, wordIdx, param, conn)
			if counter != nil {
				counter.update(param.LeftID, param.RightID)
			}
		})
	}

	// EOS normally attaches at numChars, since the last real word's
	// insertMatch/unknown-word edge ends exactly there. But when
	// ignoreSpace trails off the sentence in skippable space, every
	// attachPos from the last real word's end onward finds wordStart
	// pushed past numChars and is skipped entirely (line 73 above), so
	// ends[numChars] is left empty — mirror the Rust original's retained
	// start_node by walking back to the last position that actually
	// holds a predecessor and attaching EOS there instead.
	eosAttach := numChars
	for eosAttach > 0 && ins.endsEmpty(eosAttach) {
		eosAttach--
	}
	ins.InsertEOS(eosAttach, conn)
}
