package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront-service/internal/api"
	"github.com/fjod/go_cart/storefront-service/internal/checkout"
	"github.com/fjod/go_cart/storefront-service/internal/logger"
)

type requestIDKey struct{}

// NewAuthMiddleware forwards the shopper's token to the storefront API and
// records who the shopper is. With a secret the token must verify and the
// owner is its user id claim. Without one the owner is a fingerprint of the
// token, so a hand-made claim never reaches another shopper's cart or
// checkout.
func NewAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := api.WithToken(r.Context(), token)
			if owner := ownerFromToken(token, key); owner != "" {
				ctx = checkout.WithOwner(ctx, owner)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(api.TokenHeader)); token != "" {
		return token
	}
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	return ""
}

func ownerFromToken(token string, key []byte) string {
	if len(key) == 0 {
		return tokenFingerprint(token)
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		zap.L().Debug("shopper token rejected", zap.Error(err))
		return ""
	}
	return userIDFromClaims(claims)
}

// tokenFingerprint names the bearer of a token nobody here can verify.
func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "tok_" + hex.EncodeToString(sum[:16])
}

// userIDFromClaims reads the user id claim: {"user":{"id":...}}, "id" or
// "sub", in that order.
func userIDFromClaims(claims jwt.MapClaims) string {
	if user, ok := claims["user"].(map[string]interface{}); ok {
		if id := claimString(user["id"]); id != "" {
			return id
		}
	}
	if id := claimString(claims["id"]); id != "" {
		return id
	}
	sub, _ := claims.GetSubject()
	return sub
}

func claimString(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%.0f", id)
	default:
		return ""
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = api.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// LoggingMiddleware writes one line per request with the trace it belongs to.
func LoggingMiddleware(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", getRequestID(r.Context())),
			}
			l := logger.FromContext(r.Context(), base)
			if status >= http.StatusInternalServerError {
				l.Error("request failed", fields...)
				return
			}
			l.Info("request", fields...)
		})
	}
}
