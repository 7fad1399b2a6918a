// Package staging owns the local staging directory: inspecting candidate
// documents, copying them into the store, and resolving duplicate conflicts
// against both the directory and the ledger.
package staging

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// hashChunkSize is the read granularity for content hashing.
const hashChunkSize = 4096

// FileInfo describes a candidate document before it enters the store.
type FileInfo struct {
	Name        string
	SizeBytes   int64
	Extension   string
	ContentHash string
}

// Inspect stats and hashes the file at path. The digest is MD5, computed in
// fixed-size chunks; it is used for content equality only, never security.
func Inspect(path string) (*FileInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("inspect %s: is a directory", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, hashChunkSize)); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	return &FileInfo{
		Name:        filepath.Base(path),
		SizeBytes:   fi.Size(),
		Extension:   strings.ToLower(filepath.Ext(path)),
		ContentHash: hex.EncodeToString(h.Sum(nil)),
	}, nil
}
