// Package clientauth реализует вход клиентов дашборда через шлюз.
//
// Код доступа проверяет бэкенд (clientLogin). После успешного входа шлюз
// сохраняет запись сессии на сервере и выдаёт JWT с её идентификатором, так что
// код доступа не возвращается браузеру.
package clientauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/jwt"
	"github.com/MindThoth/HeavyD-sub001/internal/lib/sl"
	"github.com/MindThoth/HeavyD-sub001/internal/session"
)

var (
	// ErrInvalidCredentials: бэкенд отклонил email или код доступа.
	ErrInvalidCredentials = errors.New("invalid email or access code")
	// ErrUnauthorized: токен отсутствует, подделан или просрочен.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired: токен валиден, но запись сессии уже удалена.
	ErrSessionExpired = errors.New("session expired")
)

// Backend проверяет учётные данные клиента.
type Backend interface {
	Login(ctx context.Context, email, accessCode string) (json.RawMessage, error)
}

// Session — данные сессии, которые можно отдать клиенту.
type Session struct {
	ID         string          `json:"id"`
	Email      string          `json:"email"`
	Profile    json.RawMessage `json:"clientData,omitempty"`
	CapturedAt time.Time       `json:"capturedAt"`
}

// Service управляет клиентскими сессиями шлюза.
type Service struct {
	log        *slog.Logger
	backend    Backend
	sessions   session.Binder
	tokens     jwt.Maker
	revalidate bool
	now        func() time.Time
}

// New создает Service. При revalidate каждое Resume заново проверяет код доступа.
func New(log *slog.Logger, backend Backend, sessions session.Binder, tokens jwt.Maker, revalidate bool) *Service {
	return &Service{
		log:        log,
		backend:    backend,
		sessions:   sessions,
		tokens:     tokens,
		revalidate: revalidate,
		now:        time.Now,
	}
}

// Login проверяет учётные данные, создаёт сессию и возвращает токен.
func (s *Service) Login(ctx context.Context, email, accessCode string) (string, Session, error) {
	const op = "clientauth.Login"

	profile, err := s.backend.Login(ctx, email, accessCode)
	if err != nil {
		if errors.Is(err, gas.ErrApplication) {
			return "", Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", Session{}, fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.NewString()
	rec := session.NewRecord(email, accessCode, profile, s.now())
	if err := s.sessions.Bind(id).Save(ctx, rec); err != nil {
		return "", Session{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(id, email)
	if err != nil {
		return "", Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("client logged in", slog.String("op", op), slog.String("session_id", id))
	return token, toSession(id, rec), nil
}

// Resume восстанавливает сессию по токену.
//
// Если включена повторная проверка, код доступа снова отправляется в бэкенд:
// отказ удаляет запись, успех обновляет сохранённый профиль.
func (s *Service) Resume(ctx context.Context, token string) (Session, error) {
	const op = "clientauth.Resume"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	store := s.sessions.Bind(claims.SessionID)

	rec, err := store.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if !rec.CanResume() {
		_ = store.Clear(ctx)
		return Session{}, fmt.Errorf("%s: %w", op, ErrSessionExpired)
	}

	if !s.revalidate {
		return toSession(claims.SessionID, rec), nil
	}

	profile, err := s.backend.Login(ctx, rec.Email, rec.AccessCode)
	if err != nil {
		if errors.Is(err, gas.ErrApplication) {
			if clearErr := store.Clear(ctx); clearErr != nil {
				s.log.Error("failed to clear rejected session", slog.String("op", op), sl.Err(clearErr))
			}
			return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	rec = session.NewRecord(rec.Email, rec.AccessCode, profile, s.now())
	if err := store.Save(ctx, rec); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}
	return toSession(claims.SessionID, rec), nil
}

// Logout удаляет запись сессии.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "clientauth.Logout"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if err := s.sessions.Bind(claims.SessionID).Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("client logged out", slog.String("op", op), slog.String("session_id", claims.SessionID))
	return nil
}

func toSession(id string, rec session.Record) Session {
	return Session{
		ID:         id,
		Email:      rec.Email,
		Profile:    rec.Profile,
		CapturedAt: rec.CapturedAt(),
	}
}
