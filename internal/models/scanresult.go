// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// ScanTiming reports how long a filesystem walk took, broken down by phase.
type ScanTiming struct {
	TotalElapsed     time.Duration
	DiscoveryElapsed time.Duration
	ParseElapsed     time.Duration
	FilesDiscovered  int
	ChartsParsed     int
	SetsAssembled    int
}

// ScanResult is the output of one filesystem walk: an ordered sequence of
// beatmap sets, exclusively owned here, plus a timing report. Downstream
// consumers (the duplicate index, the filter engine) hold only index-based
// references into Sets, never pointers.
type ScanResult struct {
	Sets   []BeatmapSet
	Timing ScanTiming
	// Warnings collects non-fatal per-set issues (set-id disagreements,
	// duplicate-within-folder version names) without aborting the scan.
	Warnings []string
}
