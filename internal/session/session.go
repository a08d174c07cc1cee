// Package session хранит запись сессии клиента дашборда: email, код доступа и
// полученный профиль. Запись читается один раз при старте и позволяет
// выполнить тихий повторный вход.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNoSession возвращается Load, когда сохранённой записи нет.
var ErrNoSession = errors.New("session: no saved session")

// Record — сохраняемая запись сессии.
type Record struct {
	Email      string          `json:"email"`
	AccessCode string          `json:"accessCode"`
	Profile    json.RawMessage `json:"clientData,omitempty"`
	Timestamp  int64           `json:"timestamp"` // Unix, миллисекунды
}

// NewRecord заполняет Timestamp текущим временем.
func NewRecord(email, accessCode string, profile json.RawMessage, now time.Time) Record {
	return Record{
		Email:      email,
		AccessCode: accessCode,
		Profile:    profile,
		Timestamp:  now.UnixMilli(),
	}
}

// CapturedAt возвращает момент создания записи.
func (r Record) CapturedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// CanResume сообщает, достаточно ли данных для тихого повторного входа.
func (r Record) CanResume() bool {
	return r.Email != "" && r.AccessCode != ""
}

// Store — долговременное хранилище одной записи сессии.
type Store interface {
	// Save перезаписывает сохранённую запись.
	Save(ctx context.Context, rec Record) error
	// Load возвращает запись или ErrNoSession.
	Load(ctx context.Context) (Record, error)
	// Clear удаляет запись; отсутствие записи ошибкой не считается.
	Clear(ctx context.Context) error
}
