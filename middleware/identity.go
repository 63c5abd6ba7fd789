package middleware

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Grab your secret from env (or config)
var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// Claims are the custom payload in the JWT
type Claims struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Identity is the submitting identity attached to every request. Every
// report must be attributable to one; anonymous submissions carry the
// configured service identity instead of a hardcoded constant in the
// pipeline.
type Identity struct {
	UserID    uuid.UUID
	Name      string
	Anonymous bool
}

// unexported type prevents collisions in context
type ctxKey int

const identityKey ctxKey = iota

// GenerateToken creates a signed JWT valid for 24 h
func GenerateToken(userID uuid.UUID, name string) (string, error) {
	claims := Claims{
		UserID: userID.String(),
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// IdentityMiddleware resolves the submitting identity and stashes it in
// ctx. A valid Bearer token yields the authenticated user; anything else
// falls back to the service identity so unauthenticated reporting keeps
// working.
func IdentityMiddleware(serviceUser uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := Identity{UserID: serviceUser, Anonymous: true}

			if auth := r.Header.Get("Authorization"); auth != "" {
				parts := strings.SplitN(auth, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					if claims := parseToken(parts[1]); claims != nil {
						if id, err := uuid.Parse(claims.UserID); err == nil {
							identity = Identity{UserID: id, Name: claims.Name, Anonymous: false}
						}
					}
				}
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseToken(tokenStr string) *Claims {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetIdentity returns the identity stashed by IdentityMiddleware. The
// zero Identity is returned when the middleware did not run.
func GetIdentity(r *http.Request) Identity {
	identity, _ := r.Context().Value(identityKey).(Identity)
	return identity
}
