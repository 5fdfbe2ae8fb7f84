// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osusync/bridge/internal/dupindex"
	"github.com/osusync/bridge/internal/filter"
	"github.com/osusync/bridge/internal/resolver"
)

const chartA = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[Metadata]
Title:Bangin' Burst
TitleUnicode:Bangin' Burst
Artist:Camellia
ArtistUnicode:Camellia
Creator:Sotarks
Version:Collab Extra
Source:
Tags:electronic speedcore
BeatmapID:456
BeatmapSetID:123

[Difficulty]
HPDrainRate:6
CircleSize:4
OverallDifficulty:8
ApproachRate:9.3
SliderMultiplier:1.4
SliderTickRate:2

[TimingPoints]
1000,300,4,2,0,60,1,0

[HitObjects]
100,100,1000,1,0,0:0:0:0:
`

const chartB = `osu file format v14

[General]
AudioFilename: audio.mp3
Mode: 0

[Metadata]
Title:Another Song
TitleUnicode:Another Song
Artist:Nanahira
ArtistUnicode:Nanahira
Creator:Someone
Version:Normal
Source:
Tags:
BeatmapID:789
BeatmapSetID:456

[Difficulty]
HPDrainRate:4
CircleSize:4
OverallDifficulty:5
ApproachRate:5
SliderMultiplier:1.4
SliderTickRate:2

[TimingPoints]
1000,300,4,2,0,60,1,0

[HitObjects]
100,100,1000,1,0,0:0:0:0:
`

// writeStableSet lays out one folder under root/Songs with the given
// chart text and an accompanying audio file, mimicking a Stable install.
func writeStableSet(t *testing.T, root, folder, chart string) {
	t.Helper()
	dir := filepath.Join(root, "Songs", folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "song.osu"), []byte(chart), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.mp3"), []byte("fake audio bytes"), 0o644))
}

func openTestProgressStore(t *testing.T) *ProgressStore {
	t.Helper()
	dir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewProgressStore(db)
}

func TestEngineRunFullCycleImportsSet(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)

	engine := NewEngine(openTestProgressStore(t))
	cfg := Config{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Direction:  StableToLazer,
		Strategy:   dupindex.Composite,
		Resolver:   resolver.Auto{Action: resolver.ActionSkip},
	}

	events, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	var plan *Plan
	var result *Result
	for ev := range events {
		if ev.PlanReady != nil {
			plan = ev.PlanReady
			all := make([]int, len(*plan))
			for i := range all {
				all[i] = i
			}
			engine.Proceed(all)
		}
		if ev.Done != nil {
			result = ev.Done
		}
	}

	require.NotNil(t, plan)
	require.Len(t, *plan, 1)
	assert.Equal(t, ActionImport, (*plan)[0].Action)

	require.NotNil(t, result)
	assert.True(t, result.Success(), "expected a clean import, got %+v", result)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Failed)
	assert.False(t, engine.IsRunning())

	entries, err := os.ReadDir(filepath.Join(targetRoot, "import"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEngineRunDuplicateByHashAutoSkips(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)
	writeStableSet(t, targetRoot, "123 Camellia - Bangin' Burst", chartA)

	engine := NewEngine(nil)
	cfg := Config{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Direction:  StableToLazer,
		Strategy:   dupindex.ByHash,
		Resolver:   resolver.Auto{Action: resolver.ActionSkip},
	}

	events, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	var plan *Plan
	var result *Result
	for ev := range events {
		if ev.PlanReady != nil {
			plan = ev.PlanReady
			engine.Proceed([]int{0})
		}
		if ev.Done != nil {
			result = ev.Done
		}
	}

	require.NotNil(t, plan)
	require.Len(t, *plan, 1)
	assert.Equal(t, ActionDuplicate, (*plan)[0].Action)

	require.NotNil(t, result)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.Failed)
}

func TestEngineRunSkipsFilteredSets(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)
	writeStableSet(t, sourceRoot, "456 Nanahira - Another Song", chartB)

	engine := NewEngine(nil)
	cfg := Config{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Direction:  StableToLazer,
		Strategy:   dupindex.Composite,
		Filter:     filter.Criteria{}.WithArtistFilter("Camellia"),
		Resolver:   resolver.Auto{Action: resolver.ActionSkip},
	}

	events, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	var result *Result
	for ev := range events {
		if ev.PlanReady != nil {
			all := make([]int, len(*ev.PlanReady))
			for i := range all {
				all[i] = i
			}
			engine.Proceed(all)
		}
		if ev.Done != nil {
			result = ev.Done
		}
	}

	require.NotNil(t, result)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
}

func TestEngineRefusesConcurrentRuns(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)

	engine := NewEngine(nil)
	cfg := Config{SourceRoot: sourceRoot, TargetRoot: targetRoot, Direction: StableToLazer, Strategy: dupindex.Composite}

	events, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	_, err = engine.Run(context.Background(), cfg)
	assert.Error(t, err)

	// Drain so the first run's goroutine exits cleanly.
	go func() {
		for ev := range events {
			if ev.PlanReady != nil {
				engine.Proceed(nil)
			}
		}
	}()
	assert.Eventually(t, func() bool { return !engine.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestEngineCancelBeforeProceedYieldsCancelledResult(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)

	engine := NewEngine(nil)
	cfg := Config{SourceRoot: sourceRoot, TargetRoot: targetRoot, Direction: StableToLazer, Strategy: dupindex.Composite}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := engine.Run(ctx, cfg)
	require.NoError(t, err)

	var result *Result
	for ev := range events {
		if ev.PlanReady != nil {
			cancel()
		}
		if ev.Done != nil {
			result = ev.Done
		}
	}

	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
}

func TestEngineProgressIndexIsMonotonic(t *testing.T) {
	sourceRoot := t.TempDir()
	targetRoot := t.TempDir()
	writeStableSet(t, sourceRoot, "123 Camellia - Bangin' Burst", chartA)
	writeStableSet(t, sourceRoot, "456 Nanahira - Another Song", chartB)

	engine := NewEngine(nil)
	cfg := Config{
		SourceRoot: sourceRoot,
		TargetRoot: targetRoot,
		Direction:  StableToLazer,
		Strategy:   dupindex.Composite,
		Resolver:   resolver.Auto{Action: resolver.ActionSkip},
	}

	events, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	lastByPhase := map[Phase]int{}
	for ev := range events {
		if ev.Progress != nil {
			p := ev.Progress
			assert.GreaterOrEqual(t, p.CurrentIndex, lastByPhase[p.Phase])
			lastByPhase[p.Phase] = p.CurrentIndex
		}
		if ev.PlanReady != nil {
			all := make([]int, len(*ev.PlanReady))
			for i := range all {
				all[i] = i
			}
			engine.Proceed(all)
		}
	}
}
