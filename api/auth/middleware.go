package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/eisenwinter/extrxx/tokens"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

/*
 Extension requests carry the opaque access token as a bearer token
 (https://www.rfc-editor.org/rfc/rfc6750#section-2.1). The token is never
 parsed, it is looked up by the access validator on every request.

 The primary web application authenticates with a shared issuer key when it
 requests authorization codes for its signed in users.
*/

// IssuerKeyHeader carries the shared secret of the primary web application
const IssuerKeyHeader = "X-Issuer-Key"

// AccessValidator resolves an access token to its owner
type AccessValidator interface {
	Validate(ctx context.Context, accessToken string) (*tokens.Principal, error)
}

var (
	ErrNoPrincipal = errors.New("no principal in context")
)

type contextKey struct {
	name string
}

var (
	PrincipalContextKey = &contextKey{"Principal"}
)

// BearerAuthenticator rejects requests without a valid access token and puts
// the resolved principal into the request context
func BearerAuthenticator(v AccessValidator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="extension"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			principal, err := v.Validate(r.Context(), token)
			if errors.Is(err, tokens.ErrUpstreamUnavailable) {
				log.Warn("could not validate access token", zap.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="extension", error="invalid_token"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IssuerKeyAuthenticator guards the code endpoint, an empty key disables it
func IssuerKeyAuthenticator(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(IssuerKeyHeader)
			if key == "" || subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the principal put there by BearerAuthenticator
func FromContext(ctx context.Context) (*tokens.Principal, error) {
	p, ok := ctx.Value(PrincipalContextKey).(*tokens.Principal)
	if !ok || p == nil {
		return nil, ErrNoPrincipal
	}
	return p, nil
}
