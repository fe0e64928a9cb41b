// Package tokenizer walks the character lattice a compiled Dictionary
// supports: Tokenizer holds the shared, read-only dictionary handle and
// its configuration; Worker holds the per-goroutine mutable scratch state
// (Sentence, Lattice, result buffers) that actually runs a tokenization.
package tokenizer

import (
	"fmt"

	"github.com/vibratogo/vibrato/dictionary"
	"github.com/vibratogo/vibrato/lattice"
)

const defaultMecabMaxGroupingLen = 24

// Config holds Tokenizer's immutable, built-once settings.
type Config struct {
	ignoreSpace    bool
	spaceMask      uint32
	maxGroupingLen *int
	loadMode       dictionary.LoadMode
	cacheStrategy  dictionary.CacheStrategy
	countConnIDs   bool
}

// Option configures a Tokenizer at construction time.
type Option func(*Config, *dictionary.Dictionary) error

// WithIgnoreSpace enables MeCab-compatible space skipping: SPACE-category
// characters are skipped between words rather than required to be
// covered by an edge. Errors if the dictionary defines no SPACE category.
func WithIgnoreSpace(ignore bool) Option {
	return func(c *Config, d *dictionary.Dictionary) error {
		if !ignore {
			c.ignoreSpace = false
			return nil
		}
		id, ok := d.CharProperty().CateID("SPACE")
		if !ok {
			return fmt.Errorf("tokenizer: ignore_space requires a SPACE category, but the dictionary defines none")
		}
		c.ignoreSpace = true
		c.spaceMask = uint32(1) << uint(id)
		return nil
	}
}

// WithMaxGroupingLen caps the length of a group-generated unknown word.
// MeCab-compatible dictionaries typically want 24. Without this option
// (the default) there is no cap.
func WithMaxGroupingLen(n int) Option {
	return func(c *Config, _ *dictionary.Dictionary) error {
		c.maxGroupingLen = &n
		return nil
	}
}

// WithMecabMaxGroupingLen applies MeCab's own default cap (24 characters).
func WithMecabMaxGroupingLen() Option {
	return WithMaxGroupingLen(defaultMecabMaxGroupingLen)
}

// WithLoadMode is recorded on the Tokenizer for callers that build it via
// New alongside a path-loaded Dictionary of their own choosing; it does
// not itself load anything (dictionary loading happens in the dictionary
// package), and nothing in this package reads the recorded value.
func WithLoadMode(m dictionary.LoadMode) Option {
	return func(c *Config, _ *dictionary.Dictionary) error {
		c.loadMode = m
		return nil
	}
}

// WithCacheStrategy pairs with WithLoadMode.
func WithCacheStrategy(s dictionary.CacheStrategy) Option {
	return func(c *Config, _ *dictionary.Dictionary) error {
		c.cacheStrategy = s
		return nil
	}
}

// WithConnIDCounting makes every Worker spun off this Tokenizer tally
// connection-id usage as it tokenizes, retrievable via Worker.ConnIDCounter
// — the instrumentation pass spec.md §4.11 uses to build a reordering
// with BuildConnIdMapper.
func WithConnIDCounting(enable bool) Option {
	return func(c *Config, _ *dictionary.Dictionary) error {
		c.countConnIDs = enable
		return nil
	}
}

// Tokenizer is a cheap-to-clone, shared-owner handle over one immutable
// Dictionary plus tokenization configuration. It holds no mutable
// per-call state itself — NewWorker is what produces a mutation-capable
// context.
type Tokenizer struct {
	dict *dictionary.Dictionary
	cfg  Config
}

// New builds a Tokenizer over an already-loaded Dictionary.
func New(dict *dictionary.Dictionary, opts ...Option) (*Tokenizer, error) {
	cfg := Config{}
	for _, opt := range opts {
		if err := opt(&cfg, dict); err != nil {
			return nil, err
		}
	}
	return &Tokenizer{dict: dict, cfg: cfg}, nil
}

// Dictionary returns the underlying Dictionary handle.
func (t *Tokenizer) Dictionary() *dictionary.Dictionary { return t.dict }

// NewWorker creates an independent, mutation-capable tokenization context
// over this Tokenizer's dictionary and configuration.
func (t *Tokenizer) NewWorker() *Worker {
	w := &Worker{
		tok:      t,
		sentence: lattice.NewSentence(),
	}
	if t.cfg.countConnIDs {
		conn := t.dict.Connector()
		w.connCounter = newConnIDCounter(conn.NumLeft(), conn.NumRight())
	}
	return w
}
