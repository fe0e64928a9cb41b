package dictionary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// LoadMode controls how much structural validation FromPath runs before
// handing back a Dictionary.
type LoadMode uint8

const (
	// Validate always runs the full O(file size) structural walk over
	// every offset/count in the header before any section is sliced.
	Validate LoadMode = iota
	// TrustCache skips the structural walk when a proof file recording
	// this exact file's metadata hash already exists next to it (or in
	// the global cache directory, depending on CacheStrategy) — intended
	// for repeated process starts against a dictionary already validated
	// once.
	TrustCache
)

// CacheStrategy selects where TrustCache looks for (and Validate writes)
// the proof file.
type CacheStrategy uint8

const (
	// CacheLocal keeps the proof file next to the dictionary file, in a
	// ".cache" subdirectory.
	CacheLocal CacheStrategy = iota
	// CacheGlobal keeps proof files in a single per-user cache directory
	// (os.UserCacheDir()/vibratogo), keyed by metadata hash — useful when
	// the dictionary directory is read-only.
	CacheGlobal
)

var globalCacheDir = sync.OnceValues(func() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", wrapErr(ErrIO, "resolving user cache dir", err)
	}
	dir := filepath.Join(base, "vibratogo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", wrapErr(ErrIO, "creating global cache dir", err)
	}
	return dir, nil
})

// metaHash hashes the file's path, size, and modification time — cheap to
// recompute on every load, and changes whenever the file underneath it
// does, without reading the whole thing.
func metaHash(path string, info os.FileInfo) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	return hex.EncodeToString(h.Sum(nil))
}

// cacheFilePath resolves a name inside this strategy's cache directory
// (local ".cache" next to the file, or the global per-user cache dir),
// creating the directory if needed.
func cacheFilePath(path, name string, strategy CacheStrategy) (string, error) {
	switch strategy {
	case CacheLocal:
		dir := filepath.Join(filepath.Dir(path), ".cache")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", wrapErr(ErrIO, "creating local cache dir", err)
		}
		return filepath.Join(dir, name), nil
	case CacheGlobal:
		dir, err := globalCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, name), nil
	default:
		return "", newErr(ErrInvalidArgument, fmt.Sprintf("unknown cache strategy %d", strategy))
	}
}

func proofFilePath(path string, hash string, strategy CacheStrategy) (string, error) {
	return cacheFilePath(path, hash+".sha256", strategy)
}

// hasProof reports whether a proof file for this exact metadata hash
// already exists.
func hasProof(path, hash string, strategy CacheStrategy) bool {
	p, err := proofFilePath(path, hash, strategy)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// writeProof atomically creates the proof file marking hash as validated.
// Using O_EXCL means a racing concurrent validator simply loses the race
// silently — the file's existence is all that matters, not its contents.
func writeProof(path, hash string, strategy CacheStrategy) error {
	p, err := proofFilePath(path, hash, strategy)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return wrapErr(ErrIO, "writing proof file", err)
	}
	return f.Close()
}
