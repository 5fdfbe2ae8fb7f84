// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	syncpkg "github.com/osusync/bridge/internal/sync"
)

// Event is the outbound half of the worker protocol: the
// bridge process emits these over the Bus, and the API layer serialises
// them onto the local websocket for the UI. At most one field is set.
type Event struct {
	ScanComplete *ScanCompleteEvent
	DryRunReady  *syncpkg.Plan
	SyncProgress *syncpkg.ProgressEvent
	SyncDone     *syncpkg.Result

	BackupProgress *BackupProgressEvent

	MediaExtractionDone *MediaExtractionEvent
	ReplayExportDone    *ReplayExportEvent
	CollectionSyncDone  *CollectionSyncEvent
	SetExportDone       *SetExportEvent
	SetImportDone       *SetImportEvent

	Log   *LogEvent
	Error *ErrorEvent
}

// ScanCompleteEvent reports the outcome of one Scan(root) command.
type ScanCompleteEvent struct {
	Root     string
	SetCount int
	Warnings []string
}

// BackupPhase is the archive manager's current operation, reported
// alongside byte/file progress during BuildBackup and Restore.
type BackupPhase string

const (
	BackupPhaseScanning    BackupPhase = "scanning"
	BackupPhaseCompressing BackupPhase = "compressing"
	BackupPhaseWriting     BackupPhase = "writing"
	BackupPhaseVerifying   BackupPhase = "verifying"
	BackupPhaseDone        BackupPhase = "done"
)

// BackupProgressEvent mirrors the archive manager's phase callback.
type BackupProgressEvent struct {
	Phase     BackupPhase
	FilesDone int
	BytesDone int64
	Current   string
}

// MediaExtractionEvent reports the outcome of one ExtractMedia command.
type MediaExtractionEvent struct {
	AudioExtracted       int
	BackgroundsExtracted int
	DuplicatesSkipped    int
	BytesWritten         int64
	Errors               int
}

// ReplayExportEvent reports the outcome of one ExportReplays command.
// FilteredOut counts replays the command's filter rejected before the
// exporter ever saw them.
type ReplayExportEvent struct {
	Exported     int
	Skipped      int
	FilteredOut  int
	BytesWritten int64
	Errors       int
}

// CollectionSyncEvent reports the outcome of one SyncCollections command.
type CollectionSyncEvent struct {
	CollectionsMerged int
	EntriesAdded      int
}

// SetExportEvent reports the outcome of one ExportSets command.
type SetExportEvent struct {
	Exported  int
	Failed    int
	OutputDir string
}

// SetImportEvent reports the outcome of one ImportArchives command.
type SetImportEvent struct {
	Imported int
	Failed   int
	Folders  []string
}

// LogEvent carries a structured log line out to the UI process.
type LogEvent struct {
	Level   string
	Message string
}

// ErrorEvent is a user-visible failure: the UI layer receives errors as
// {kind, message, optional context} strings.
type ErrorEvent struct {
	Kind    string
	Message string
	Context string
}
