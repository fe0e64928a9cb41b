package dictionary

import "fmt"

// Dictionary is the fully loaded, immutable-after-construction substrate
// an analyzer needs: the system lexicon, an optional user lexicon, one
// Connector (Matrix/Raw/Dual), the character-property table, and the
// unknown-word handler. Once built or loaded, a Dictionary may be shared
// across any number of goroutines with no synchronization — there is
// nothing left to mutate.
type Dictionary struct {
	systemLexicon *Lexicon
	userLexicon   *Lexicon // nil if absent
	connector     Connector
	charProp      *CharProperty
	unkHandler    *UnkHandler
	featurePool   *stringPool

	mmapCloser func() error // non-nil only when backed by an mmap region
}

// New assembles a Dictionary from already-built components and validates
// spec.md §8 invariant 1 (every word's left/right id is within the
// connector's declared bounds) for both lexicons.
func New(system *Lexicon, user *Lexicon, conn Connector, charProp *CharProperty, unk *UnkHandler, pool *stringPool) (*Dictionary, error) {
	if err := system.Validate(conn); err != nil {
		return nil, err
	}
	if user != nil {
		if err := user.Validate(conn); err != nil {
			return nil, err
		}
	}
	return &Dictionary{
		systemLexicon: system,
		userLexicon:   user,
		connector:     conn,
		charProp:      charProp,
		unkHandler:    unk,
		featurePool:   pool,
	}, nil
}

// BuildDictionary is the raw-entry-shape builder spec.md documents as
// in scope (CSV/DEF text parsing itself is not): given already-parsed
// system/user word rows, unknown-word templates, a connector, and a
// character-property table, it interns every feature string into one
// shared pool and assembles a validated Dictionary. userEntries may be
// nil for a system-only dictionary.
func BuildDictionary(systemEntries, userEntries []RawWordEntry, unkEntries []RawUnkEntry, conn Connector, charProp *CharProperty) (*Dictionary, error) {
	pool := newStringPool()

	system, err := FromEntries(systemEntries, LexSystem, pool)
	if err != nil {
		return nil, err
	}

	var user *Lexicon
	if len(userEntries) > 0 {
		user, err = FromEntries(userEntries, LexUser, pool)
		if err != nil {
			return nil, err
		}
	}

	unk, err := FromRawUnkEntries(unkEntries, charProp, pool)
	if err != nil {
		return nil, err
	}

	return New(system, user, conn, charProp, unk, pool)
}

func (d *Dictionary) SystemLexicon() *Lexicon     { return d.systemLexicon }
func (d *Dictionary) UserLexicon() *Lexicon       { return d.userLexicon } // may be nil
func (d *Dictionary) Connector() Connector        { return d.connector }
func (d *Dictionary) CharProperty() *CharProperty { return d.charProp }
func (d *Dictionary) UnkHandler() *UnkHandler     { return d.unkHandler }

// Close releases any mmap region backing this dictionary. Safe to call on
// a heap-backed or builder-assembled Dictionary (no-op).
func (d *Dictionary) Close() error {
	if d.mmapCloser != nil {
		return d.mmapCloser()
	}
	return nil
}

// Map applies a ConnIdMapper to every table that indexes by connection
// id — both lexicons' WordParams, the UnkHandler's entries, and the
// Connector itself — consistently, in place. This is meant to run once,
// before serialization; loaders see already-mapped dictionaries.
func (d *Dictionary) Map(mapper *ConnIdMapper) error {
	if err := applyToConnector(d.connector, mapper); err != nil {
		return err
	}
	d.systemLexicon.ApplyConnIdMapper(mapper)
	if d.userLexicon != nil {
		d.userLexicon.ApplyConnIdMapper(mapper)
	}
	d.unkHandler.ApplyConnIdMapper(mapper)
	return nil
}

// validateConsistency re-checks invariant 1 for both lexicons and the
// unknown-word entries. Read and validateFull run it on every loaded
// dictionary; Map does not call it.
func (d *Dictionary) validateConsistency() error {
	if err := d.systemLexicon.Validate(d.connector); err != nil {
		return err
	}
	if d.userLexicon != nil {
		if err := d.userLexicon.Validate(d.connector); err != nil {
			return err
		}
	}
	numLeft, numRight := d.connector.NumLeft(), d.connector.NumRight()
	for _, e := range d.unkHandler.entries {
		if e.LeftID >= numLeft || e.RightID >= numRight {
			return newErr(ErrInvalidState, fmt.Sprintf("unk entry left/right id out of connector bounds (%d/%d)", e.LeftID, e.RightID))
		}
	}
	return nil
}
