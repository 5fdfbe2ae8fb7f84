// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package collectiondb parses and serialises the legacy collection.db
// binary format: a flat list of named MD5 collections.
package collectiondb

import (
	"github.com/osusync/bridge/internal/binfmt"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

// Parse decodes a collection.db byte stream. An empty file is legal and
// yields an empty collection list. A negative top-level count, or a
// negative per-collection hash count, is a structured parse failure.
func Parse(buf []byte, path string) ([]models.Collection, error) {
	if len(buf) == 0 {
		return nil, nil
	}

	r := binfmt.NewReader(buf, path)

	if _, err := r.Int32("version"); err != nil {
		return nil, err
	}

	count, err := r.Int32("count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, syncerr.ParseFailure(path, r.Offset(), "count", syncerr.New(syncerr.KindParseFailure, "negative collection count"))
	}

	collections := make([]models.Collection, 0, count)
	for i := int32(0); i < count; i++ {
		name, err := r.String("name")
		if err != nil {
			return nil, err
		}

		hashCount, err := r.Int32("hash_count")
		if err != nil {
			return nil, err
		}
		if hashCount < 0 {
			return nil, syncerr.ParseFailure(path, r.Offset(), "hash_count", syncerr.New(syncerr.KindParseFailure, "negative hash count"))
		}

		hashes := make([]string, 0, hashCount)
		for j := int32(0); j < hashCount; j++ {
			h, err := r.String("hash")
			if err != nil {
				return nil, err
			}
			hashes = append(hashes, h)
		}

		collections = append(collections, models.Collection{Name: name, MD5s: hashes})
	}

	return collections, nil
}

// Serialise re-encodes collections into the collection.db wire format.
func Serialise(collections []models.Collection, version int32) []byte {
	w := binfmt.NewWriter()
	w.Int32(version)
	w.Int32(int32(len(collections)))
	for _, c := range collections {
		w.String(c.Name)
		w.Int32(int32(len(c.MD5s)))
		for _, h := range c.MD5s {
			w.String(h)
		}
	}
	return w.Bytes()
}
