package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"faceverify/internal/core/domain"
)

type contextKey string

const (
	ctxKeyUserID contextKey = "userID"
	ctxKeyToken  contextKey = "accessToken"
)

// accessClaims is the shape of the auth service's access tokens. The
// subject carries the user ID.
type accessClaims struct {
	jwt.RegisteredClaims
}

// userIDFromContext returns the authenticated user's ID; empty outside
// the guarded route group.
func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

func tokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(ctxKeyToken).(string)
	return tok
}

// authGuard validates the Bearer access token (HS256 only) and stores
// the subject and the raw token on the request context.
func (s *Server) authGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims := &accessClaims{}
		parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return s.jwtSecret, nil
		})
		if err != nil || !parsed.Valid || claims.Subject == "" {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.Subject)
		ctx = context.WithValue(ctx, ctxKeyToken, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// denylistGuard rejects tokens revoked via AUTH_TOKEN_BLACKLIST.
func (s *Server) denylistGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		revoked, err := s.denylist.Contains(r.Context(), tokenFromContext(r.Context()))
		if err != nil {
			s.log.Error().Err(err).Msg("Denylist lookup failed")
			s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
			return
		}
		if revoked {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// userGuard requires a known, unblocked, signed-up user replica. The
// resolved user is kept on the context for the handler.
func (s *Server) userGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("User lookup failed")
			s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
			return
		}
		if user == nil {
			s.writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if user.IsBlocked {
			s.writeError(w, http.StatusForbidden, "User is blocked")
			return
		}
		if !user.SignedUp {
			s.writeError(w, http.StatusForbidden, "User has not completed sign-up")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// verificationGuard rejects a new request while one is in flight or
// after the user already verified.
func (s *Server) verificationGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := userIDFromContext(r.Context())

		user, err := s.users.GetByID(r.Context(), userID)
		if err != nil || user == nil {
			s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
			return
		}
		if user.FaceIDVerified {
			s.writeError(w, http.StatusConflict, "User is already verified")
			return
		}

		active, err := s.verifications.FindActiveByUser(r.Context(), userID)
		if err != nil {
			s.log.Error().Err(err).Str("user_id", userID).Msg("Active verification lookup failed")
			s.writeError(w, http.StatusInternalServerError, "Server Error, Please try again")
			return
		}
		if active != nil && active.Status == domain.StatusStarted {
			s.writeError(w, http.StatusConflict, "Verification already in progress")
			return
		}
		next.ServeHTTP(w, r)
	})
}
