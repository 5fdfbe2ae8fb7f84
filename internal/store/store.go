// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store implements osu!lazer's hash-based content-addressed file
// layout: every file lives at files/<h0>/<h0h1>/<hash>, where hash is the
// file's lowercase hex SHA-256 digest. The store trusts the filesystem;
// a file present at a given hash is assumed to hash to that value, and
// Verify exists only as an on-demand audit hook, never a read-path check.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/osusync/bridge/internal/syncerr"
)

// Store is a content-addressed file store rooted at <root>/files.
type Store struct {
	filesPath string
}

// New returns a Store rooted at root/files.
func New(root string) *Store {
	return &Store{filesPath: filepath.Join(root, "files")}
}

// HashToPath returns the on-disk path for a given hash, without touching
// the filesystem.
func (s *Store) HashToPath(hash string) string {
	h := strings.ToLower(hash)
	if len(h) < 2 {
		return filepath.Join(s.filesPath, h)
	}
	return filepath.Join(s.filesPath, h[0:1], h[0:2], h)
}

// Exists reports whether a file is present at hash. Stat-only; never reads.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.HashToPath(hash))
	return err == nil
}

// Read returns the full contents of the file at hash.
func (s *Store) Read(hash string) ([]byte, error) {
	path := s.HashToPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, syncerr.NotFound(path)
		}
		return nil, syncerr.IO(path, err)
	}
	return data, nil
}

// Verify recomputes the hash of the stored bytes and compares it against
// hash, case-insensitively. It is the audit path; normal reads never pay
// this cost.
func (s *Store) Verify(hash string) (bool, error) {
	data, err := s.Read(hash)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(ComputeHash(data), hash), nil
}

// List walks the two-level directory layout and yields every hash present
// in the store. A missing files/ directory yields an empty list, not an
// error: a freshly-initialised lazer installation has none yet.
func (s *Store) List() ([]string, error) {
	var hashes []string

	level1, err := os.ReadDir(s.filesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return hashes, nil
		}
		return nil, syncerr.IO(s.filesPath, err)
	}

	for _, d1 := range level1 {
		if !d1.IsDir() {
			continue
		}
		dir1 := filepath.Join(s.filesPath, d1.Name())
		level2, err := os.ReadDir(dir1)
		if err != nil {
			return nil, syncerr.IO(dir1, err)
		}
		for _, d2 := range level2 {
			if !d2.IsDir() {
				continue
			}
			dir2 := filepath.Join(dir1, d2.Name())
			entries, err := os.ReadDir(dir2)
			if err != nil {
				return nil, syncerr.IO(dir2, err)
			}
			for _, e := range entries {
				if e.Type().IsRegular() {
					hashes = append(hashes, e.Name())
				}
			}
		}
	}

	return hashes, nil
}

// Write stores data under its content hash and returns the hash and
// whether a new file was written. If a file already exists at that hash,
// the write is skipped on an existence check alone; the caller never pays
// for a content comparison on the common path. The write itself stages to
// a uniquely named temp file in the destination directory and renames it
// into place, so a concurrent writer for the same hash either sees the
// finished file or nothing at all, never a partial one.
func (s *Store) Write(data []byte) (hash string, wrote bool, err error) {
	hash = ComputeHash(data)
	dest := s.HashToPath(hash)

	if _, statErr := os.Stat(dest); statErr == nil {
		return hash, false, nil
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hash, false, syncerr.IO(dir, err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := writeFileAtomic(tmp, data); err != nil {
		return hash, false, syncerr.IO(tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return hash, false, syncerr.IO(dest, err)
	}

	return hash, true, nil
}

func writeFileAtomic(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// ComputeHash returns the lowercase hex SHA-256 digest of data.
func ComputeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashReader streams r and returns its lowercase hex SHA-256 digest without
// buffering the whole input in memory.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
