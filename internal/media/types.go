// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package media

// Kind selects which media files an Extractor pulls out of a beatmap set.
type Kind int

const (
	KindAudio Kind = iota
	KindBackgrounds
	KindBoth
)

func (k Kind) wantsAudio() bool       { return k == KindAudio || k == KindBoth }
func (k Kind) wantsBackgrounds() bool { return k == KindBackgrounds || k == KindBoth }

// Organisation controls how extracted files are laid out under the
// output directory.
type Organisation int

const (
	// OrganisationFlat writes every file directly into the output
	// directory.
	OrganisationFlat Organisation = iota
	// OrganisationByArtist groups files under "<Artist>/<filename>".
	OrganisationByArtist
	// OrganisationByBeatmap groups files under
	// "<Artist> - <Title>/<filename>".
	OrganisationByBeatmap
)

// FileError pairs a beatmap set or file identifier with the error
// encountered extracting it; a failure on one file never aborts the rest
// of the run.
type FileError struct {
	Path    string
	Message string
}

// Result totals one extraction run.
type Result struct {
	AudioExtracted       int
	BackgroundsExtracted int
	DuplicatesSkipped    int
	BytesWritten         int64
	Errors               []FileError
}

// TotalExtracted returns the combined audio and background file count.
func (r Result) TotalExtracted() int { return r.AudioExtracted + r.BackgroundsExtracted }

// HasErrors reports whether any file failed to extract.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// Progress reports incremental extraction status, mirroring the sync
// engine's progress-event shape (current item name, counters so far).
type Progress struct {
	CurrentSet      string
	CurrentFile     string
	SetsProcessed   int
	TotalSets       int
	FilesExtracted  int
	BytesWritten    int64
}

// Percentage returns 0..100 progress through the sets being processed.
func (p Progress) Percentage() float64 {
	if p.TotalSets == 0 {
		return 0
	}
	return float64(p.SetsProcessed) / float64(p.TotalSets) * 100
}

// ProgressFunc receives one Progress update per set processed.
type ProgressFunc func(Progress)
