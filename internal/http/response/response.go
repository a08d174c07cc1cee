// Package response формирует JSON-ответы обработчиков шлюза в том же конверте
// {success, message, data}, что и бэкенд, чтобы клиентам было всё равно,
// отвечает шлюз или Apps Script.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/MindThoth/HeavyD-sub001/internal/gas"
	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Response — стандартный конверт ответа.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"invalid request body"`
}

// OK возвращает успешный ответ без данных.
func OK() Response {
	return Response{Success: true}
}

// OKWithData возвращает успешный ответ с данными.
func OKWithData(data any) Response {
	return Response{Success: true, Data: data}
}

// Error возвращает ответ с ошибкой.
func Error(msg string) Response {
	return Response{Success: false, Message: msg}
}

// ValidationError собирает человеко-читаемое сообщение из ошибок валидатора.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "numeric":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only numbers", err.Field()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "client_status":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), strings.Join(models.ClientStatus, " ")))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must have at least %s items", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Success: false,
		Message: strings.Join(errsMsgs, ", "),
	}
}

// FromBackend переводит ошибку клиента бэкенда в HTTP-статус и конверт.
// Отказ бэкенда передаёт его сообщение, сбои связи и формата скрывают детали.
func FromBackend(err error) (int, Response) {
	var appErr *gas.ApplicationError
	switch {
	case errors.As(err, &appErr):
		msg := appErr.Message
		if msg == "" {
			msg = "request rejected by backend"
		}
		return http.StatusUnprocessableEntity, Error(msg)
	case errors.Is(err, gas.ErrTransport):
		return http.StatusBadGateway, Error("backend unreachable")
	case errors.Is(err, gas.ErrProtocol):
		return http.StatusBadGateway, Error("malformed backend response")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}
