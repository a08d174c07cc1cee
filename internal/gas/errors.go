package gas

import (
	"errors"
	"fmt"
)

// Классы отказов клиента бэкенда. Конкретные ошибки сопоставляются с ними через errors.Is.
var (
	ErrTransport   = errors.New("gas: transport failure")
	ErrProtocol    = errors.New("gas: protocol failure")
	ErrApplication = errors.New("gas: application failure")
)

// TransportError означает, что ответа нет: сеть недоступна, таймаут, обрыв чтения тела.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gas %s: transport: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ProtocolError: ответ получен, но это не конверт; тело не JSON или нет булева поля success.
type ProtocolError struct {
	Action string
	Status int
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gas %s: protocol: %s (http %d)", e.Action, e.Reason, e.Status)
}

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// ApplicationError — корректный конверт с success=false.
type ApplicationError struct {
	Action  string
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gas %s: rejected by backend", e.Action)
	}
	return fmt.Sprintf("gas %s: %s", e.Action, e.Message)
}

func (e *ApplicationError) Is(target error) bool { return target == ErrApplication }
