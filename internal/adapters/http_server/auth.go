package httpserver

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"mytrip/internal/domain"
)

// sessionCookie carries the identity token for browser requests.
const sessionCookie = "__session"

type ctxKey int

const identityKey ctxKey = iota

// Verifier checks RS256 identity tokens issued by the auth provider.
type Verifier struct {
	key    *rsa.PublicKey
	issuer string
}

// NewVerifier returns nil when no key is configured; every request is then anonymous.
func NewVerifier(publicKeyPEM, issuer string) (*Verifier, error) {
	if strings.TrimSpace(publicKeyPEM) == "" {
		return nil, nil
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse auth public key: %w", err)
	}
	return &Verifier{key: key, issuer: issuer}, nil
}

// Verify returns the token subject, which is the external auth id.
func (v *Verifier) Verify(raw string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) { return v.key, nil }, opts...)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Identity attaches the verified external id to the request context. Missing
// or invalid tokens leave the request anonymous.
func Identity(v *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw := tokenFrom(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := v.Verify(raw)
			if err != nil {
				log.Debug().Err(err).Msg("identity token rejected")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, sub)))
		})
	}
}

// RequireIdentity answers 401 for anonymous requests.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ExternalID(r.Context()) == "" {
			writeError(w, r, domain.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExternalID returns the caller's external auth id, "" when anonymous.
func ExternalID(ctx context.Context) string {
	s, _ := ctx.Value(identityKey).(string)
	return s
}
