package tokenizer

import (
	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/lattice"
)

// Worker is the mutation-capable context that actually runs a
// tokenization: one Sentence, one Lattice (1-best or N-best, switched
// lazily per call), a result buffer, an optional N-best path buffer, and
// an optional connection-ID frequency counter. A Worker must not be
// shared across goroutines; Tokenizer.NewWorker produces an independent
// one per caller.
type Worker struct {
	tok      *Tokenizer
	sentence *lattice.Sentence

	lat      *lattice.Lattice
	latNBest *lattice.LatticeNBest

	topNodes []lattice.TopNode
	nbest    [][]lattice.TopNode

	connCounter *connIDCounter
}

// ResetSentence clears prior state, sets the input text, and compiles
// it against the dictionary's CharProperty — spec.md §4.11's
// reset_sentence.
func (w *Worker) ResetSentence(input string) {
	w.sentence.Compile(input, w.tok.dict.CharProperty())
	w.topNodes = w.topNodes[:0]
	w.nbest = nil
}

// Tokenize builds the 1-best Viterbi lattice over the current sentence
// and backtraces it into the worker's token buffer.
func (w *Worker) Tokenize() {
	numChars := w.sentence.NumChars()
	if w.lat == nil {
		w.lat = lattice.NewLattice(numChars)
	} else {
		w.lat.Reset(numChars)
	}

	runLatticeConstruction(w.tok, w.sentence, latticeAdapter{w.lat}, w.connCounter)

	w.topNodes = w.lat.Backtrace()
}

// TokenizeNbest builds the N-best lattice, runs A*, and collects the
// first n paths (by non-decreasing total cost) into the worker's N-best
// buffer.
func (w *Worker) TokenizeNbest(n int) {
	numChars := w.sentence.NumChars()
	if w.latNBest == nil {
		w.latNBest = lattice.NewLatticeNBest(numChars)
	} else {
		w.latNBest.Reset(numChars)
	}

	runLatticeConstruction(w.tok, w.sentence, nbestLatticeAdapter{w.latNBest}, w.connCounter)

	gen := lattice.NewNbestGenerator(w.latNBest, w.tok.dict.Connector())
	w.nbest = w.nbest[:0]
	for i := 0; i < n; i++ {
		nodes, _, ok := gen.Next()
		if !ok {
			break
		}
		w.nbest = append(w.nbest, nodes)
	}
}

// NumTokens returns how many tokens the last Tokenize call produced.
func (w *Worker) NumTokens() int { return len(w.topNodes) }

// Token returns a read-only view of the i-th token (forward order) of
// the last Tokenize call.
func (w *Worker) Token(i int) Token {
	// topNodes is stored EOS-to-BOS (reverse); flip the index.
	tn := w.topNodes[len(w.topNodes)-1-i]
	return Token{w: w, tn: tn}
}

// TokenIter calls fn for every token of the last Tokenize call, in
// forward order, stopping early if fn returns false.
func (w *Worker) TokenIter(fn func(Token) bool) {
	for i := 0; i < w.NumTokens(); i++ {
		if !fn(w.Token(i)) {
			return
		}
	}
}

// NumNbest returns how many N-best paths the last TokenizeNbest call
// produced (may be less than n if the lattice had fewer distinct paths).
func (w *Worker) NumNbest() int { return len(w.nbest) }

// NbestTokens returns path i (0 = best) of the last TokenizeNbest call as
// a forward-ordered token view slice.
func (w *Worker) NbestTokens(i int) []Token {
	nodes := w.nbest[i]
	out := make([]Token, len(nodes))
	for j, tn := range nodes {
		out[j] = Token{w: w, tn: tn}
	}
	return out
}

// ConnIDCounter returns this worker's connection-id usage tally, or nil
// if the Tokenizer was not built with WithConnIDCounting.
func (w *Worker) ConnIDCounter() *ConnIDCounter {
	if w.connCounter == nil {
		return nil
	}
	return &ConnIDCounter{c: w.connCounter}
}

// dictionary returns the dictionary this worker's tokenizer is bound to
// — used by Token to resolve surfaces/features.
func (w *Worker) dictionary() *dictionary.Dictionary { return w.tok.dict }

func (w *Worker) sentenceText() *lattice.Sentence { return w.sentence }
