// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package syncerr defines the structured error taxonomy shared by every
// package in the bridge. Errors are named by contract (what the caller
// should do about them) rather than by the package that produced them, so
// a caller can switch on Kind without importing the producing package.
package syncerr

import (
	"errors"
	"fmt"
)

// Kind identifies the contract of an error, independent of which package
// produced it.
type Kind string

const (
	KindIO                Kind = "io"
	KindParseFailure      Kind = "parse_failure"
	KindNotFound          Kind = "not_found"
	KindInvalidArchive    Kind = "invalid_archive"
	KindHashMismatch      Kind = "hash_mismatch"
	KindCancelled         Kind = "cancelled"
	KindConfiguration     Kind = "configuration"
	KindLinkCreation      Kind = "link_creation"
	KindBrokenLink        Kind = "broken_link"
	KindElevationRequired Kind = "elevation_required"
	KindGameRunning       Kind = "game_running"
	KindMigrationFailure  Kind = "migration_failure"
	KindNotSupported      Kind = "not_supported"
	KindOther             Kind = "other"
)

// Error is the structured error value propagated across every package
// boundary in the bridge. It is never panicked; only invariant violations
// (programmer errors) panic.
type Error struct {
	Kind Kind
	// Path is the filesystem path involved, when relevant.
	Path string
	// Offset is the byte offset within Path where a binary parse failed.
	Offset int64
	// Field names the structured field that failed to parse or validate.
	Field string
	// Step names the unified-storage migration step that failed.
	Step string
	// Game names the game executable blocking a unified-storage operation.
	Game string
	// Message is a human-readable description.
	Message string
	// Err wraps the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s (field=%s)", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, satisfying
// errors.Is(err, New(kind, ...)) comparisons on Kind alone.
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Kind == te.Kind
}

// New constructs a bare Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithOffset returns a copy of e with Offset and Field set, for binary
// parse failures.
func (e *Error) WithOffset(offset int64, field string) *Error {
	c := *e
	c.Offset = offset
	c.Field = field
	return &c
}

// IO wraps an underlying filesystem error carrying a path.
func IO(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Message: "filesystem operation failed", Err: err}
}

// ParseFailure reports a malformed binary or text input.
func ParseFailure(path string, offset int64, field string, err error) *Error {
	return &Error{
		Kind:    KindParseFailure,
		Path:    path,
		Offset:  offset,
		Field:   field,
		Message: "malformed input",
		Err:     err,
	}
}

// NotFound reports a missing beatmap, file, or installation.
func NotFound(path string) *Error {
	return &Error{Kind: KindNotFound, Path: path, Message: "not found"}
}

// InvalidArchive reports a structurally valid zip with no usable content.
func InvalidArchive(path, reason string) *Error {
	return &Error{Kind: KindInvalidArchive, Path: path, Message: reason}
}

// HashMismatch reports a computed hash disagreeing with an expected one.
func HashMismatch(path, expected, actual string) *Error {
	return &Error{
		Kind:    KindHashMismatch,
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %s", expected, actual),
	}
}

// Cancelled reports a user-initiated abort.
func Cancelled() *Error {
	return &Error{Kind: KindCancelled, Message: "operation cancelled"}
}

// Configuration reports an invalid or missing configuration field.
func Configuration(field, message string) *Error {
	return &Error{Kind: KindConfiguration, Field: field, Message: message}
}

// LinkCreation reports a failed symlink/junction creation.
func LinkCreation(source, dest string, err error) *Error {
	return &Error{
		Kind:    KindLinkCreation,
		Path:    fmt.Sprintf("%s -> %s", source, dest),
		Message: "link creation failed",
		Err:     err,
	}
}

// BrokenLink reports an observed-broken unified-storage link.
func BrokenLink(path string) *Error {
	return &Error{Kind: KindBrokenLink, Path: path, Message: "link is broken"}
}

// ElevationRequired reports that link creation needs privileges not held.
func ElevationRequired(path string) *Error {
	return &Error{Kind: KindElevationRequired, Path: path, Message: "elevated privileges required"}
}

// GameRunning reports that an operation requires the named game closed.
func GameRunning(game string) *Error {
	return &Error{Kind: KindGameRunning, Game: game, Message: fmt.Sprintf("%s is running", game)}
}

// MigrationFailure reports a failed step in unified-storage setup.
func MigrationFailure(step string, err error) *Error {
	return &Error{Kind: KindMigrationFailure, Step: step, Message: "migration step failed", Err: err}
}

// NotSupported reports an operation the bridge deliberately does not
// implement, rather than silently degrading it.
func NotSupported(message string) *Error {
	return &Error{Kind: KindNotSupported, Message: message}
}

// Other is the catch-all for unexpected conditions.
func Other(message string, err error) *Error {
	return &Error{Kind: KindOther, Message: message, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
