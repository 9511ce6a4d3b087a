package middleware

import (
	"errors"
	"net/http"
	"strings"

	apperrors "mentorbook/pkg/errors"
	httputil "mentorbook/pkg/http"
	"mentorbook/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// Authentication resolves the Bearer token into a user ID and role on the
// request context.
func Authentication(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid authorization header format"))
				return
			}

			claims, err := ParseToken(parts[1], key)
			if err != nil {
				log.Warn("Rejected token",
					"request_id", RequestIDFromContext(r.Context()),
					"error", err,
				)
				if errors.Is(err, jwt.ErrTokenExpired) {
					_ = httputil.WriteError(w, apperrors.Unauthorized("Token has expired"))
					return
				}
				_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid token"))
				return
			}

			ctx := WithUser(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
