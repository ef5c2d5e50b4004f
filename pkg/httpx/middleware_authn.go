package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/lobby/pkg/jwtx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

// maxTokenPeekBytes bounds how much body is buffered to look for a token.
const maxTokenPeekBytes = 1 << 20

// AuthnMiddleware requires a valid lobby token. It is read from the
// Authorization header, then the token query parameter, then the token field
// of a JSON body. A missing or invalid token is a transport-level 401.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := extractToken(r)
			if raw == "" {
				WriteEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token rejected", "err", err)
				WriteEnvelope(w, http.StatusUnauthorized, http.StatusUnauthorized, "invalid or expired token", nil)
				return
			}

			ctx = contextWithAuth(ctx, raw, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, raw string, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	ctx = context.WithValue(ctx, CtxKeyToken, raw)
	return ctx
}

func extractToken(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		if tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")); tok != "" {
			return tok
		}
	}
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	return bodyField(r, "token")
}

// bodyField reads a string field from a JSON body and restores the body for
// the next handler.
func bodyField(r *http.Request, field string) string {
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxTokenPeekBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(fields[field], &s); err != nil {
		return ""
	}
	return s
}
