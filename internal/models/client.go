// Package models содержит плоские записи, которыми обменивается шлюз с бэкендом
// на Google Apps Script. Все поля строковые: они повторяют колонки таблицы
// и не несут поведения, владельцем данных остаётся внешний бэкенд.
package models

// Client представляет клиента из таблицы клиентов.
type Client struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	AccessCode  string `json:"accessCode,omitempty"`
	ProjectType string `json:"projectType"`
	CreatedAt   string `json:"createdAt"`
}

// ClientStatus — допустимые значения колонки статуса клиента.
var ClientStatus = []string{"lead", "active", "in-progress", "completed", "archived"}

// Employee представляет сотрудника.
type Employee struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Rate   string `json:"rate"`
	Active string `json:"active"`
}
