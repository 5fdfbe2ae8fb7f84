// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/osusync/bridge/internal/activity"
	"github.com/osusync/bridge/internal/backup"
	"github.com/osusync/bridge/internal/collectiondb"
	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/media"
	"github.com/osusync/bridge/internal/models"
	"github.com/osusync/bridge/internal/replayexport"
	"github.com/osusync/bridge/internal/scanner"
	"github.com/osusync/bridge/internal/scoredb"
	"github.com/osusync/bridge/internal/setarchive"
	"github.com/osusync/bridge/internal/store"
	syncpkg "github.com/osusync/bridge/internal/sync"
	"github.com/osusync/bridge/internal/syncerr"
	"github.com/osusync/bridge/internal/unified"
)

// legacyCollectionDBVersion is stamped onto a re-serialised collection.db
// when neither side's original version survives the merge (both absent).
// Matches the version osu!stable has written since collection.db gained
// a version field.
const legacyCollectionDBVersion = 20220110

// Dispatcher is the inbound half of the worker protocol: it
// translates API-layer commands into calls against the scanner, sync
// engine, unified-storage engine and archive manager, publishing every
// resulting outcome onto the Bus as an Event. The API layer owns the
// wire framing; the Dispatcher owns what each command actually does.
type Dispatcher struct {
	bus           *Bus
	syncEngine    *syncpkg.Engine
	unifiedEngine *unified.Engine
	backupMgr     *backup.Manager

	activityLog *activity.Log
	skipList    *activity.SkipList
}

// NewDispatcher wires a Dispatcher to the services it drives.
func NewDispatcher(bus *Bus, syncEngine *syncpkg.Engine, unifiedEngine *unified.Engine) *Dispatcher {
	return &Dispatcher{bus: bus, syncEngine: syncEngine, unifiedEngine: unifiedEngine, backupMgr: backup.NewManager()}
}

// SetActivityLog attaches the persisted recent-activity history every
// command records a summary into. Nil (the default) disables recording.
func (d *Dispatcher) SetActivityLog(log *activity.Log) { d.activityLog = log }

// SetSkipList attaches the permanent set skip list consulted by
// StartSync. Nil (the default) disables it.
func (d *Dispatcher) SetSkipList(list *activity.SkipList) { d.skipList = list }

// SkipList returns the skip list this dispatcher consults, or nil if
// none was set.
func (d *Dispatcher) SkipList() *activity.SkipList { return d.skipList }

// RecentActivity returns up to n of the most recently recorded
// activities, newest first, or nil if no activity log is attached.
func (d *Dispatcher) RecentActivity(n int) []activity.Entry {
	if d.activityLog == nil {
		return nil
	}
	return d.activityLog.Recent(n)
}

func (d *Dispatcher) recordActivity(typ activity.Type, description, details string) {
	if d.activityLog == nil {
		return
	}
	if err := d.activityLog.Add(typ, description, details); err != nil {
		logging.Warn().Err(err).Msg("failed to persist activity entry")
	}
}

// Scan runs one scan of root and publishes ScanComplete. When
// useLegacyIndex is set, it first tries the cached osu!.db index
// (scanner.ScanFromLegacyIndex) instead of walking Songs/ and
// reparsing every chart file; a missing or unreadable index falls back
// to the full filesystem walk rather than failing the command.
func (d *Dispatcher) Scan(ctx context.Context, root string, skipHashing, useLegacyIndex bool) {
	var result *models.ScanResult
	var err error

	if useLegacyIndex {
		result, err = scanner.ScanFromLegacyIndex(root)
	}
	if !useLegacyIndex || err != nil {
		result, err = scanner.Scan(ctx, root, scanner.Options{SkipHashing: skipHashing})
	}
	if err != nil {
		d.publishError(err)
		return
	}
	d.bus.Publish(Event{ScanComplete: &ScanCompleteEvent{
		Root:     root,
		SetCount: len(result.Sets),
		Warnings: result.Warnings,
	}})
	d.recordActivity(activity.TypeScan, fmt.Sprintf("scanned %d sets under %s", len(result.Sets), root), "")
}

// StartSync starts a sync run and streams its events onto the Bus until
// it reaches Done. It blocks until the sync finishes or is cancelled; the
// API layer should call it from its own goroutine per sync request. If
// cfg.SkipList is unset and this Dispatcher has one attached, the
// attached list is applied.
func (d *Dispatcher) StartSync(ctx context.Context, cfg syncpkg.Config) {
	if cfg.SkipList == nil {
		cfg.SkipList = d.skipList
	}
	events, err := d.syncEngine.Run(ctx, cfg)
	if err != nil {
		d.publishError(err)
		return
	}
	for ev := range events {
		switch {
		case ev.PlanReady != nil:
			d.bus.Publish(Event{DryRunReady: ev.PlanReady})
		case ev.Progress != nil:
			d.bus.Publish(Event{SyncProgress: ev.Progress})
		case ev.Done != nil:
			d.bus.Publish(Event{SyncDone: ev.Done})
			d.recordActivity(activity.TypeSync,
				fmt.Sprintf("synced %s -> %s", cfg.SourceRoot, cfg.TargetRoot),
				fmt.Sprintf("imported=%d skipped=%d failed=%d", ev.Done.Imported, ev.Done.Skipped, ev.Done.Failed))
		}
	}
}

// Proceed answers the sync engine's PlanReady pause with the caller's
// selected plan indices.
func (d *Dispatcher) Proceed(selection []int) { d.syncEngine.Proceed(selection) }

// Cancel requests cancellation of the in-flight sync, if any.
func (d *Dispatcher) Cancel() { d.syncEngine.Cancel() }

// UnifiedSetup configures unified storage and publishes any warnings as
// Log events.
func (d *Dispatcher) UnifiedSetup(cfg unified.Config) {
	warnings, err := d.unifiedEngine.Setup(cfg)
	if err != nil {
		d.publishError(err)
		return
	}
	for _, w := range warnings {
		d.bus.Publish(Event{Log: &LogEvent{Level: "warn", Message: w}})
	}
	d.recordActivity(activity.TypeInfo, "unified storage configured", fmt.Sprintf("warnings=%d", len(warnings)))
}

// UnifiedVerify checks link health and returns the full VerifyResult to
// its synchronous caller. It also publishes a warn Log event when any
// link is unhealthy (HealthPercent below 100).
func (d *Dispatcher) UnifiedVerify() unified.VerifyResult {
	result := d.unifiedEngine.Verify()
	if result.HealthPercent() < 100 {
		d.bus.Publish(Event{Log: &LogEvent{Level: "warn", Message: "one or more unified-storage links are unhealthy"}})
	}
	return result
}

// UnifiedTeardown removes unified-storage links and publishes any
// warnings as Log events.
func (d *Dispatcher) UnifiedTeardown() {
	warnings, err := d.unifiedEngine.Teardown()
	if err != nil {
		d.publishError(err)
		return
	}
	for _, w := range warnings {
		d.bus.Publish(Event{Log: &LogEvent{Level: "warn", Message: w}})
	}
	d.recordActivity(activity.TypeInfo, "unified storage torn down", fmt.Sprintf("warnings=%d", len(warnings)))
}

// BuildBackup archives target into destDir and publishes BackupProgress
// events as the archive manager works through scanning, compressing,
// writing and verifying the result.
func (d *Dispatcher) BuildBackup(ctx context.Context, target, destDir string, mode backup.Mode, level backup.CompressionLevel) {
	result, err := d.backupMgr.BuildBackup(ctx, target, destDir, mode, level, d.publishBackupProgress)
	if err != nil {
		d.publishError(err)
		return
	}
	d.recordActivity(activity.TypeBackup, fmt.Sprintf("backed up %s", target), result.ArchivePath)
}

// Restore extracts archivePath onto destRoot and publishes BackupProgress
// events as the archive manager works.
func (d *Dispatcher) Restore(ctx context.Context, archivePath, destRoot string) {
	result, err := d.backupMgr.Restore(ctx, archivePath, destRoot, d.publishBackupProgress)
	if err != nil {
		d.publishError(err)
		return
	}
	d.recordActivity(activity.TypeRestore, fmt.Sprintf("restored %s into %s", archivePath, destRoot),
		fmt.Sprintf("files_restored=%d", result.FilesRestored))
}

// ExtractMedia scans root, pulls the requested media kind out of every
// discovered set and writes it under outputDir, publishing
// MediaExtractionDone when finished. lazerSource selects whether root's
// files live in a content-addressed store (Lazer) or a named Songs/
// folder (Stable).
func (d *Dispatcher) ExtractMedia(ctx context.Context, root string, lazerSource bool, kind media.Kind, organisation media.Organisation, outputDir string, skipHashing bool) {
	result, err := scanner.Scan(ctx, root, scanner.Options{SkipHashing: skipHashing})
	if err != nil {
		d.publishError(err)
		return
	}

	var resolver media.SourceResolver
	if lazerSource {
		resolver = media.LazerResolver{Store: store.New(root)}
	} else {
		resolver = media.StableResolver{Root: root}
	}

	extractor := media.Extractor{
		Resolver:     resolver,
		OutputDir:    outputDir,
		Organisation: organisation,
		Kind:         kind,
	}
	extracted, err := extractor.Extract(result.Sets)
	if err != nil {
		d.publishError(err)
		return
	}
	d.bus.Publish(Event{MediaExtractionDone: &MediaExtractionEvent{
		AudioExtracted:       extracted.AudioExtracted,
		BackgroundsExtracted: extracted.BackgroundsExtracted,
		DuplicatesSkipped:    extracted.DuplicatesSkipped,
		BytesWritten:         extracted.BytesWritten,
		Errors:               len(extracted.Errors),
	}})
	d.recordActivity(activity.TypeMediaExtract, fmt.Sprintf("extracted media from %s", root),
		fmt.Sprintf("audio=%d backgrounds=%d", extracted.AudioExtracted, extracted.BackgroundsExtracted))
}

// ExportReplays loads root's score index, narrows it through flt (zero
// value exports everything), copies every selected replay backed by an
// on-disk file into outputDir and publishes ReplayExportDone.
func (d *Dispatcher) ExportReplays(root string, flt replayexport.Filter, organisation replayexport.Organisation, outputDir string) {
	replays, err := scoredb.LoadFromRoot(root)
	if err != nil {
		d.publishError(err)
		return
	}
	selected := flt.Apply(replays)

	exporter := replayexport.Exporter{OutputDir: outputDir, Organisation: organisation}
	exported, err := exporter.Export(selected)
	if err != nil {
		d.publishError(err)
		return
	}
	d.bus.Publish(Event{ReplayExportDone: &ReplayExportEvent{
		Exported:     exported.Exported,
		Skipped:      exported.Skipped,
		FilteredOut:  len(replays) - len(selected),
		BytesWritten: exported.BytesWritten,
		Errors:       len(exported.Errors),
	}})
	d.recordActivity(activity.TypeReplayExport, fmt.Sprintf("exported replays from %s", root),
		fmt.Sprintf("exported=%d skipped=%d filtered_out=%d", exported.Exported, exported.Skipped, len(replays)-len(selected)))
}

// ExportSets scans root and packs the named set folders (every set when
// folders is empty) into .osz archives under outputDir, publishing
// SetExportDone. A failure packing one set never aborts the rest.
func (d *Dispatcher) ExportSets(ctx context.Context, root string, folders []string, outputDir string) {
	result, err := scanner.Scan(ctx, root, scanner.Options{SkipHashing: true})
	if err != nil {
		d.publishError(err)
		return
	}

	wanted := make(map[string]bool, len(folders))
	for _, f := range folders {
		wanted[f] = true
	}

	songsDir := filepath.Join(root, "Songs")
	var exported, failed int
	for _, set := range result.Sets {
		if len(wanted) > 0 && !wanted[set.FolderName] {
			continue
		}
		if _, err := setarchive.Export(set, songsDir, outputDir); err != nil {
			failed++
			logging.Warn().Err(err).Str("folder", set.FolderName).Msg("set export failed")
			continue
		}
		exported++
	}

	d.bus.Publish(Event{SetExportDone: &SetExportEvent{
		Exported:  exported,
		Failed:    failed,
		OutputDir: outputDir,
	}})
	d.recordActivity(activity.TypeExport, fmt.Sprintf("exported %d sets from %s", exported, root),
		fmt.Sprintf("failed=%d output=%s", failed, outputDir))
}

// ImportArchives extracts each .osz archive into targetRoot's Songs/
// directory and publishes SetImportDone. The legacy client re-indexes
// the new folders on its next launch; a failure extracting one archive
// never aborts the rest.
func (d *Dispatcher) ImportArchives(paths []string, targetRoot string) {
	songsDir := filepath.Join(targetRoot, "Songs")

	var imported, failed int
	var importedFolders []string
	for _, path := range paths {
		folder, err := setarchive.Import(path, songsDir)
		if err != nil {
			failed++
			logging.Warn().Err(err).Str("archive", path).Msg("set archive import failed")
			continue
		}
		imported++
		importedFolders = append(importedFolders, folder)
	}

	d.bus.Publish(Event{SetImportDone: &SetImportEvent{
		Imported: imported,
		Failed:   failed,
		Folders:  importedFolders,
	}})
	d.recordActivity(activity.TypeSync, fmt.Sprintf("imported %d set archives into %s", imported, targetRoot),
		fmt.Sprintf("failed=%d", failed))
}

// SyncCollections unions sourceRoot's collection.db into targetRoot's and
// writes the merged file back to targetRoot, publishing
// CollectionSyncDone. Lazer keeps no collection.db of its own, so
// lazerTarget reports KindNotSupported rather than writing one.
func (d *Dispatcher) SyncCollections(sourceRoot, targetRoot string, lazerTarget bool) {
	if lazerTarget {
		d.publishError(syncerr.NotSupported("lazer does not expose a collection.db to merge into"))
		return
	}

	source, err := loadCollectionDB(filepath.Join(sourceRoot, "collection.db"))
	if err != nil {
		d.publishError(err)
		return
	}
	targetPath := filepath.Join(targetRoot, "collection.db")
	target, err := loadCollectionDB(targetPath)
	if err != nil {
		d.publishError(err)
		return
	}

	merged, added := collectiondb.Merge(target, source)

	tmp := targetPath + ".tmp"
	if err := os.WriteFile(tmp, collectiondb.Serialise(merged, legacyCollectionDBVersion), 0o644); err != nil {
		d.publishError(syncerr.IO(targetPath, err))
		return
	}
	if err := os.Rename(tmp, targetPath); err != nil {
		os.Remove(tmp)
		d.publishError(syncerr.IO(targetPath, err))
		return
	}

	d.bus.Publish(Event{CollectionSyncDone: &CollectionSyncEvent{
		CollectionsMerged: len(merged),
		EntriesAdded:      added,
	}})
	d.recordActivity(activity.TypeCollectionSync, fmt.Sprintf("synced collections %s -> %s", sourceRoot, targetRoot),
		fmt.Sprintf("collections=%d entries_added=%d", len(merged), added))
}

// loadCollectionDB reads and parses a collection.db, treating a missing
// file as an empty collection list rather than an error: a fresh Stable
// install has none yet.
func loadCollectionDB(path string) ([]models.Collection, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, syncerr.IO(path, err)
	}
	return collectiondb.Parse(buf, path)
}

func (d *Dispatcher) publishBackupProgress(p backup.Progress) {
	d.bus.Publish(Event{BackupProgress: &BackupProgressEvent{
		Phase:     BackupPhase(p.Phase),
		FilesDone: p.FilesDone,
		BytesDone: p.BytesDone,
		Current:   p.Current,
	}})
}

func (d *Dispatcher) publishError(err error) {
	logging.Warn().Err(err).Msg("worker command failed")
	d.bus.Publish(Event{Error: &ErrorEvent{Kind: "command_failed", Message: err.Error()}})
}
