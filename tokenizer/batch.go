package tokenizer

import (
	"runtime"
	"sync"
)

// TokenizeAll tokenizes every sentence in sentences concurrently across
// a worker pool, one *Worker per goroutine (never shared, per spec.md
// §5's no-shared-Worker rule), and returns each sentence's tokens in the
// same order as the input — grounded on the teacher's chunked
// channel+WaitGroup ParseList/InflectList pattern, generalized to
// preserve input order instead of teacher's word-sorted output.
func (t *Tokenizer) TokenizeAll(sentences []string) [][]BufToken {
	const chunkSize = 1000
	numWorkers := runtime.NumCPU()
	if numWorkers > len(sentences)/chunkSize+1 {
		numWorkers = len(sentences)/chunkSize + 1
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	type chunk struct {
		start     int
		sentences []string
	}
	type result struct {
		start  int
		tokens [][]BufToken
	}

	chunksCh := make(chan chunk, numWorkers)
	resultCh := make(chan result, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			worker := t.NewWorker()
			for c := range chunksCh {
				tokens := make([][]BufToken, len(c.sentences))
				for i, s := range c.sentences {
					worker.ResetSentence(s)
					worker.Tokenize()
					buf := make([]BufToken, 0, worker.NumTokens())
					worker.TokenIter(func(tok Token) bool {
						buf = append(buf, tok.ToBuf())
						return true
					})
					tokens[i] = buf
				}
				resultCh <- result{start: c.start, tokens: tokens}
			}
		}()
	}

	go func() {
		for i := 0; i < len(sentences); i += chunkSize {
			end := i + chunkSize
			if end > len(sentences) {
				end = len(sentences)
			}
			chunksCh <- chunk{start: i, sentences: sentences[i:end]}
		}
		close(chunksCh)
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([][]BufToken, len(sentences))
	for r := range resultCh {
		copy(out[r.start:r.start+len(r.tokens)], r.tokens)
	}
	return out
}
