// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package legacydb

import "github.com/osusync/bridge/internal/binfmt"

// Serialise re-encodes a Database into the osu!.db wire format, the mirror
// image of Parse, for the binary round-trip property test.
func Serialise(db *Database) []byte {
	w := binfmt.NewWriter()

	w.Int32(db.Header.Version)
	w.Int32(db.Header.FolderCount)
	w.Int64(db.Header.LastModifiedTicks)
	w.Byte(db.Header.Permission)
	w.String(db.Header.OwnerName)
	w.Int32(int32(len(db.Entries)))

	for _, e := range db.Entries {
		writeEntry(w, e)
	}

	return w.Bytes()
}

func writeEntry(w *binfmt.Writer, e Entry) {
	w.String(e.FolderName)
	w.String(e.AudioFilename)
	w.String(e.BackgroundFilename)
	w.String(e.MD5)
	w.String(e.Metadata.Title)
	w.String(e.Metadata.TitleUnicode)
	w.String(e.Metadata.Artist)
	w.String(e.Metadata.ArtistUnicode)
	w.String(e.Metadata.Creator)
	w.String(e.Version)
	w.String(e.Metadata.Source)
	w.String(joinTags(e.Metadata.Tags))
	w.Int32(e.Metadata.OnlineBeatmapID)
	w.Int32(e.Metadata.OnlineSetID)
	w.Float64(e.HPDrain)
	w.Float64(e.CircleSize)
	w.Float64(e.OverallDifficulty)
	w.Float64(e.ApproachRate)
	w.Float64(e.SliderMultiplier)
	w.Float64(e.SliderTickRate)

	w.Bool(e.StarRating != nil)
	if e.StarRating != nil {
		w.Float64(*e.StarRating)
	}

	w.Int32(e.LengthMs)
	w.Float64(e.BPM)
	w.Byte(byte(e.Mode))
	w.Byte(encodeRankedStatus(e.Status))

	w.Int32(int32(len(e.TimingPoints)))
	for _, tp := range e.TimingPoints {
		w.Float64(tp.OffsetMs)
		w.Float64(tp.BeatLength)
		w.Bool(tp.Uninherited)
	}
}
