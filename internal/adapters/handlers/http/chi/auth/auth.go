package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KhoaHuuDeang/MDHH-sub001/internal/adapters/handlers/http/chi/respond"
	"github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey struct{}

// Claims carries the owner id of the caller. Subject is preferred; UserID is accepted for older tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"UserID,omitempty"`
}

// IssueToken signs an HS256 token for ownerID
func IssueToken(ownerID uuid.UUID, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
	})
	return token.SignedString(secret)
}

// ParseToken validates tokenString and returns the owner id it was issued for
func ParseToken(tokenString string, secret []byte) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return uuid.Nil, domain.ErrUnauthorized
	}

	subject := claims.Subject
	if subject == "" {
		subject = claims.UserID
	}
	ownerID, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", domain.ErrUnauthorized)
	}
	return ownerID, nil
}

// Middleware rejects requests without a valid bearer token and stores the owner id in the context
func Middleware(secret []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				respond.Error(w, r, logger, domain.ErrUnauthorized)
				return
			}

			ownerID, err := ParseToken(tokenString, secret)
			if err != nil {
				respond.Error(w, r, logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), ownerID)))
		})
	}
}

// WithOwner returns a context carrying ownerID
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKey{}, ownerID)
}

// OwnerFromContext returns the owner set by Middleware
func OwnerFromContext(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := ctx.Value(ctxKey{}).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, errors.New("no owner in context")
	}
	return ownerID, nil
}
