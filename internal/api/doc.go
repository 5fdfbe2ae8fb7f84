// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package api exposes the worker protocol over a loopback HTTP+WebSocket
surface: a small chi route tree translates JSON requests into
worker.Dispatcher calls, and a single /api/v1/ws endpoint streams the
resulting worker.Events to the connected UI process as they occur.

This is not a multi-tenant server. It binds to localhost and assumes
exactly one UI process talks to it at a time. A POST /api/v1/session
handshake mints a process-lifetime bearer token that every other route
requires, which only proves "this caller can reach the socket", not who
they are. CORS, request-ID propagation and Prometheus instrumentation
are carried over from the wider ambient stack; OIDC and RBAC are not,
since a single-user loopback tool has no concept of multiple identities
to distinguish (see DESIGN.md).
*/
package api
