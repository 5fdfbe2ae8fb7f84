// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package collectiondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/models"
)

func TestMergeUnionsExistingCollectionByName(t *testing.T) {
	target := []models.Collection{{Name: "Favorites", MD5s: []string{"aaa"}}}
	source := []models.Collection{{Name: "Favorites", MD5s: []string{"aaa", "bbb"}}}

	merged, added := Merge(target, source)
	assert.Equal(t, 1, added)
	assert.Len(t, merged, 1)
	assert.Equal(t, []string{"aaa", "bbb"}, merged[0].MD5s)
}

func TestMergeAppendsNewCollectionName(t *testing.T) {
	target := []models.Collection{{Name: "Favorites", MD5s: []string{"aaa"}}}
	source := []models.Collection{{Name: "Training", MD5s: []string{"ccc", "ddd"}}}

	merged, added := Merge(target, source)
	assert.Equal(t, 2, added)
	require.Len(t, merged, 2)
	assert.Equal(t, "Training", merged[1].Name)
}

func TestMergeOfEmptyTargetReturnsSource(t *testing.T) {
	source := []models.Collection{{Name: "Favorites", MD5s: []string{"aaa"}}}
	merged, added := Merge(nil, source)
	assert.Equal(t, 1, added)
	assert.Equal(t, source, merged)
}
