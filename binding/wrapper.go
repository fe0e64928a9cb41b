// Package main builds a cgo-exported facade over the tokenizer package,
// for embedding vibratogo into a host process that isn't Go — the
// dictionary is loaded once via CreateTokenizer, and TokenizeSentence
// hands back a JSON array of {surface, feature} tokens per call.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"encoding/json"
	"unsafe"

	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/tokenizer"
)

var (
	globalDict   *dictionary.Dictionary
	globalTok    *tokenizer.Tokenizer
	globalWorker *tokenizer.Worker
)

type tokenJSON struct {
	Surface string `json:"surface"`
	Feature string `json:"feature"`
}

//export CreateTokenizer
func CreateTokenizer(dictPath *C.char) C.int {
	path := C.GoString(dictPath)

	dict, err := dictionary.FromPath(path, dictionary.Validate, dictionary.CacheLocal)
	if err != nil {
		return 0
	}
	tok, err := tokenizer.New(dict)
	if err != nil {
		dict.Close()
		return 0
	}

	globalDict = dict
	globalTok = tok
	globalWorker = tok.NewWorker()
	return 1
}

//export TokenizeSentence
func TokenizeSentence(text *C.char) *C.char {
	if globalWorker == nil {
		return C.CString("[]")
	}

	input := C.GoString(text)
	globalWorker.ResetSentence(input)
	globalWorker.Tokenize()

	tokens := make([]tokenJSON, 0, globalWorker.NumTokens())
	globalWorker.TokenIter(func(t tokenizer.Token) bool {
		tokens = append(tokens, tokenJSON{Surface: t.Surface(), Feature: t.Feature()})
		return true
	})

	out, err := json.Marshal(tokens)
	if err != nil {
		return C.CString("[]")
	}
	return C.CString(string(out))
}

//export FreeString
func FreeString(str *C.char) {
	if str != nil {
		C.free(unsafe.Pointer(str))
	}
}

//export ReleaseTokenizer
func ReleaseTokenizer() {
	if globalDict != nil {
		globalDict.Close()
	}
	globalDict = nil
	globalTok = nil
	globalWorker = nil
}

func main() {}
