// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

// BuildBackup handles POST /api/v1/backup. Progress streams over the
// websocket as BackupProgressEvent; this handler only acknowledges the
// request was accepted.
func (h *Handler) BuildBackup(w http.ResponseWriter, r *http.Request) {
	var req buildBackupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Target == "" || req.DestDir == "" {
		respondError(w, r, errMissingField("target/dest_dir"))
		return
	}
	mode, level, err := req.toArgs()
	if err != nil {
		respondError(w, r, err)
		return
	}
	go h.dispatcher.BuildBackup(h.ctx, req.Target, req.DestDir, mode, level)
	respondOK(w, map[string]string{"accepted": "true"})
}

// Restore handles POST /api/v1/restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ArchivePath == "" || req.DestRoot == "" {
		respondError(w, r, errMissingField("archive_path/dest_root"))
		return
	}
	go h.dispatcher.Restore(h.ctx, req.ArchivePath, req.DestRoot)
	respondOK(w, map[string]string{"accepted": "true"})
}
