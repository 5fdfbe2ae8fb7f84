// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/osusync/bridge/internal/logging"
	"github.com/osusync/bridge/internal/syncerr"
)

// Response is the envelope every handler in this package replies with.
// Data carries the operation's payload on success; Error carries a
// syncerr-flavoured description on failure. Exactly one of the two is
// populated.
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody mirrors syncerr.Error's public fields, minus the wrapped
// cause (which is logged server-side, never sent to the client).
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal api response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("ETag", generateETag(body))
	w.WriteHeader(status)
	w.Write(body)
}

func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, Response{Status: "ok", Data: data})
}

// respondError logs the full error (including any wrapped cause) and
// writes a sanitised ErrorBody keyed on err's syncerr.Kind. Errors that
// aren't a *syncerr.Error are reported as "other" with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	logging.CtxErr(r.Context(), err).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg("api request failed")

	kind := syncerr.KindOther
	message := "internal error"
	path := ""
	if se, ok := asSyncErr(err); ok {
		kind = se.Kind
		message = se.Message
		path = se.Path
	}

	respondJSON(w, statusForKind(kind), Response{
		Status: "error",
		Error: &ErrorBody{
			Kind:    string(kind),
			Message: sanitizeLogValue(message),
			Path:    sanitizeLogValue(path),
		},
	})
}

func asSyncErr(err error) (*syncerr.Error, bool) {
	var se *syncerr.Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func statusForKind(kind syncerr.Kind) int {
	switch kind {
	case syncerr.KindNotFound:
		return http.StatusNotFound
	case syncerr.KindConfiguration, syncerr.KindParseFailure, syncerr.KindInvalidArchive:
		return http.StatusBadRequest
	case syncerr.KindGameRunning, syncerr.KindElevationRequired:
		return http.StatusConflict
	case syncerr.KindCancelled:
		return http.StatusGone
	case syncerr.KindNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeLogValue escapes control characters so a malicious or
// malformed path/message can't forge extra log lines or JSON structure
// when interpolated into a response or log record.
func sanitizeLogValue(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r < 0x20 }) < 0 {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r < 0x20 {
			b.WriteString("\\x")
			b.WriteString(strconv.FormatInt(int64(r), 16))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// generateETag returns a short, weak content hash for body. It exists to
// let a UI process cheaply notice it already has the latest snapshot of
// an idempotent GET (e.g. the unified-storage ledger); it is not a
// cryptographic integrity check.
func generateETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return `W/"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}
