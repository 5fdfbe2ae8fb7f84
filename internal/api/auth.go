// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/osusync/bridge/internal/syncerr"
)

// sessionClaims identifies the one UI process allowed to drive this
// bridge instance over the loopback socket. There is no username or
// role: a bridge process and its UI are the same user, so the token's
// only job is proving "this caller started this bridge", not who they
// are.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates the short-lived bearer token a UI
// process presents on every request after an initial handshake. This is
// a single loopback session, not a multi-user login system: one
// process-lifetime secret, one subject, HS256 throughout.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer generates a fresh random signing secret and returns an
// issuer good for the given token lifetime. The secret is never
// persisted: a restarted bridge process invalidates every previously
// issued token, which is the desired behaviour for a loopback worker
// that a UI process reconnects to on launch.
func NewTokenIssuer(ttl time.Duration) (*TokenIssuer, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{secret: secret, ttl: ttl}, nil
}

// Issue mints a new bearer token valid for the issuer's configured ttl.
func (i *TokenIssuer) Issue() (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "osu-sync-bridge-ui",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a bearer token, rejecting anything not
// signed with HS256 by this issuer's secret, expired, or malformed.
func (i *TokenIssuer) Validate(tokenString string) error {
	_, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	return err
}

// sessionHandler handles POST /api/v1/session: the one unauthenticated
// route, which hands the caller a bearer token for every subsequent
// request. A loopback tool has no credential to check here beyond "can
// reach the socket at all", so the handshake is a formality that still
// forces every other route behind requireBearerToken.
func sessionHandler(issuer *TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := issuer.Issue()
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondOK(w, map[string]string{"token": token})
	}
}

// requireBearerToken rejects any request that does not carry a valid
// Authorization: Bearer <token> header signed by issuer. /health/* and
// /metrics stay open so a liveness probe never needs the token.
func requireBearerToken(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				respondError(w, r, syncerr.New(syncerr.KindConfiguration, "missing bearer token"))
				return
			}
			if err := issuer.Validate(strings.TrimSpace(parts[1])); err != nil {
				respondError(w, r, syncerr.New(syncerr.KindConfiguration, "invalid or expired bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
