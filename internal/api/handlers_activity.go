// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/osusync/bridge/internal/syncerr"
)

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, syncerr.New(syncerr.KindConfiguration, "invalid limit")
	}
	return n, nil
}

// Activity handles GET /api/v1/activity, returning the most recent
// recorded activity entries, newest first, for a UI's history panel.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	n := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if parsed, err := parsePositiveInt(q); err == nil {
			n = parsed
		}
	}
	respondOK(w, h.dispatcher.RecentActivity(n))
}

// SkipSet handles POST /api/v1/skiplist, permanently excluding a set from
// future sync plans by online set id or folder name.
func (h *Handler) SkipSet(w http.ResponseWriter, r *http.Request) {
	var req skipSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.SetID == nil && req.FolderName == "" {
		respondError(w, r, errMissingField("set_id/folder_name"))
		return
	}
	list := h.dispatcher.SkipList()
	if list == nil {
		respondOK(w, map[string]string{"accepted": "false"})
		return
	}
	var err error
	if req.SetID != nil {
		err = list.AddSetID(*req.SetID)
	} else {
		err = list.AddFolderName(req.FolderName)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, map[string]string{"accepted": "true"})
}
