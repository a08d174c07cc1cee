package models

// TimeEntry — запись учёта рабочего времени сотрудника по клиенту.
type TimeEntry struct {
	ID          string `json:"id"`
	EmployeeID  string `json:"employeeId"`
	ClientEmail string `json:"clientEmail"`
	Date        string `json:"date"`
	Hours       string `json:"hours"`
	Description string `json:"description"`
}

// Expense — расход, привязанный к клиенту или проекту.
type Expense struct {
	ID          string `json:"id"`
	ClientEmail string `json:"clientEmail"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// Receipt — квитанция, выставленная клиенту.
type Receipt struct {
	ID          string `json:"id"`
	ClientEmail string `json:"clientEmail"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	FileURL     string `json:"fileUrl"`
	Status      string `json:"status"`
}
