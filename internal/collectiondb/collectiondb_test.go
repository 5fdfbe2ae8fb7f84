// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package collectiondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/syncerr"
)

func TestParseEmptyFileYieldsEmptyList(t *testing.T) {
	got, err := Parse(nil, "collection.db")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseTwoCollectionsFavoritesAndTraining(t *testing.T) {
	buf := []byte{
		0x1e, 0xe3, 0x33, 0x01, // version
		0x02, 0x00, 0x00, 0x00, // collection count = 2
	}
	buf = append(buf, 0x0b, 0x09) // name marker, length 9
	buf = append(buf, "Favorites"...)
	buf = append(buf, 0x02, 0x00, 0x00, 0x00) // hash_count = 2
	buf = append(buf, 0x0b, 0x20)             // marker, length 32
	buf = append(buf, "d41d8cd98f00b204e9800998ecf8427e"...)
	buf = append(buf, 0x0b, 0x20)
	buf = append(buf, "098f6bcd4621d373cade4e832627b4f6"...)
	buf = append(buf, 0x0b, 0x08) // name marker, length 8
	buf = append(buf, "Training"...)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00) // hash_count = 0

	got, err := Parse(buf, "collection.db")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Favorites", got[0].Name)
	assert.Equal(t, []string{"d41d8cd98f00b204e9800998ecf8427e", "098f6bcd4621d373cade4e832627b4f6"}, got[0].MD5s)

	assert.Equal(t, "Training", got[1].Name)
	assert.Empty(t, got[1].MD5s)
}

func TestParseNegativeCountIsError(t *testing.T) {
	buf := []byte{
		0x01, 0x00, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff, // count = -1
	}
	_, err := Parse(buf, "collection.db")
	require.Error(t, err)
	assert.True(t, syncerr.Is(err, syncerr.KindParseFailure))
}

func TestSerialiseParseRoundTrip(t *testing.T) {
	original := []models.Collection{
		{Name: "Favorites", MD5s: []string{"d41d8cd98f00b204e9800998ecf8427e"}},
		{Name: "Empty", MD5s: nil},
	}
	buf := Serialise(original, 20250101)

	got, err := Parse(buf, "collection.db")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, original[0].Name, got[0].Name)
	assert.Equal(t, original[0].MD5s, got[0].MD5s)
	assert.Equal(t, original[1].Name, got[1].Name)
	assert.Empty(t, got[1].MD5s)
}
