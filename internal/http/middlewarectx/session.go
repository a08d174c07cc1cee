// Package middlewarectx содержит HTTP middleware шлюза.
//
// SessionMiddleware проверяет токен сессии из заголовка Authorization и кладёт
// восстановленную сессию в контекст запроса.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/MindThoth/HeavyD-sub001/internal/http/response"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/services/clientauth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionKey — ключ восстановленной сессии в контексте.
	SessionKey Key = "session"
	// TokenKey — ключ исходного токена в контексте.
	TokenKey Key = "token"
)

// Resumer восстанавливает сессию по токену.
type Resumer interface {
	Resume(ctx context.Context, token string) (clientauth.Session, error)
}

// SessionMiddleware пропускает запрос дальше только с действующей сессией.
func SessionMiddleware(log *slog.Logger, auth Resumer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := BearerToken(r)
			if !ok {
				log.Info("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			sess, err := auth.Resume(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, clientauth.ErrUnauthorized),
					errors.Is(err, clientauth.ErrSessionExpired),
					errors.Is(err, clientauth.ErrInvalidCredentials):
					log.Info("session rejected", sl.Err(err))
					w.WriteHeader(http.StatusUnauthorized)
					render.JSON(w, r, response.Error("invalid or expired session"))
				default:
					log.Error("failed to resume session", sl.Err(err))
					w.WriteHeader(http.StatusBadGateway)
					render.JSON(w, r, response.Error("could not verify session"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken достаёт токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return token, token != ""
}

// SessionFrom возвращает сессию, положенную SessionMiddleware.
func SessionFrom(ctx context.Context) (clientauth.Session, bool) {
	sess, ok := ctx.Value(SessionKey).(clientauth.Session)
	return sess, ok
}
