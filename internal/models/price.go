package models

import "time"

// ServicePrice хранит себестоимость и цену за единицу площади для услуги.
// Значения приходят из таблицы строками, поэтому парсятся при расчёте.
type ServicePrice struct {
	Service   string `json:"service"`
	UnitCost  string `json:"unitCost"`
	UnitPrice string `json:"unitPrice"`
}

// ContactForm — заявка с маркетингового сайта.
type ContactForm struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Service string `json:"service,omitempty" validate:"omitempty,max=100"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Submission — запись журнала заявок с сайта.
type Submission struct {
	ID             string      `json:"id"`
	Form           ContactForm `json:"form"`
	ReceivedAt     time.Time   `json:"receivedAt"`
	UpstreamStatus *int        `json:"upstreamStatus,omitempty"`
	Accepted       bool        `json:"accepted"`
	RelayedAt      *time.Time  `json:"relayedAt,omitempty"`
}
