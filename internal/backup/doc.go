// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package backup archives a library root (Stable's Songs/ tree or Lazer's
files/ content store) into a standard zip file plus a sidecar JSON
manifest, and restores one back onto disk.

Archive layout: a zip with every archived file at its path relative to
the target root, plus a backup_info.json at the zip root describing the
run. A sidecar <archive>.manifest.json sits next to the zip, never
inside it, and records {path, modified_unix_secs, content_fingerprint,
size} for every archived file. Incremental backups diff the target
against the most recent manifest found alongside the destination
directory and archive only the files that changed.
*/
package backup
