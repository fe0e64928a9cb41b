package dictionary

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// FromZstdPath loads a Dictionary distributed as a zstd-compressed archive
// of the binary format Write produces — spec.md §6's compressed
// distribution format. The archive is decompressed once into a cache file
// named after its metadata hash, in the cache directory strategy selects
// (".cache" next to the archive, or the global one), then loaded the normal way
// through FromPath, so repeat loads of the same archive skip
// decompression entirely.
func FromZstdPath(path string, mode LoadMode, strategy CacheStrategy) (*Dictionary, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, wrapErr(ErrIO, "statting zstd dictionary archive", err)
	}
	hash := metaHash(path, info)
	decompressedPath, err := cacheFilePath(path, hash+".dict", strategy)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(decompressedPath); err != nil {
		if err := decompressZstd(path, decompressedPath); err != nil {
			return nil, err
		}
	}
	return FromPath(decompressedPath, mode, strategy)
}

func decompressZstd(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return wrapErr(ErrIO, "opening zstd archive", err)
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return wrapErr(ErrInvalidFormat, "opening zstd stream", err)
	}
	defer dec.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return wrapErr(ErrIO, "creating zstd cache dir", err)
	}
	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return wrapErr(ErrIO, "creating decompressed cache file", err)
	}
	if _, err := io.Copy(out, dec); err != nil {
		out.Close()
		os.Remove(tmp)
		return wrapErr(ErrIO, "decompressing zstd archive", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return wrapErr(ErrIO, "closing decompressed cache file", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return wrapErr(ErrIO, "finalizing decompressed cache file", err)
	}
	return nil
}
