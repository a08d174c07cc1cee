package gas

import (
	"net/url"

	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Query — чтение через GET ?action=... Набор реализаций закрыт: только типы этого пакета.
type Query interface {
	Action() string
	Values() url.Values
	isQuery()
}

// Mutation — запись через POST с JSON-телом {mode, ...fields}. Набор реализаций закрыт.
type Mutation interface {
	Mode() string
	Fields() map[string]any
	isMutation()
}

// GetAllClients возвращает всех клиентов (административный обработчик).
type GetAllClients struct{}

func (GetAllClients) Action() string     { return "getAllClients" }
func (GetAllClients) Values() url.Values { return url.Values{} }
func (GetAllClients) isQuery()           {}

// GetClientData возвращает профиль одного клиента.
type GetClientData struct {
	Email string
}

func (GetClientData) Action() string       { return "getClientData" }
func (q GetClientData) Values() url.Values { return url.Values{"email": {q.Email}} }
func (GetClientData) isQuery()             {}

// ClientLogin проверяет пару email и код доступа и возвращает профиль клиента.
type ClientLogin struct {
	Email      string
	AccessCode string
}

func (ClientLogin) Action() string { return "clientLogin" }
func (q ClientLogin) Values() url.Values {
	return url.Values{"email": {q.Email}, "accessCode": {q.AccessCode}}
}
func (ClientLogin) isQuery() {}

// GetEmployees возвращает список сотрудников.
type GetEmployees struct{}

func (GetEmployees) Action() string     { return "getEmployees" }
func (GetEmployees) Values() url.Values { return url.Values{} }
func (GetEmployees) isQuery()           {}

// GetTimeEntries возвращает записи времени; при пустом ClientEmail по всем клиентам.
type GetTimeEntries struct {
	ClientEmail string
}

func (GetTimeEntries) Action() string { return "getTimeEntries" }
func (q GetTimeEntries) Values() url.Values {
	return optional("clientEmail", q.ClientEmail)
}
func (GetTimeEntries) isQuery() {}

// GetExpenses возвращает расходы; при пустом ClientEmail по всем клиентам.
type GetExpenses struct {
	ClientEmail string
}

func (GetExpenses) Action() string       { return "getExpenses" }
func (q GetExpenses) Values() url.Values { return optional("clientEmail", q.ClientEmail) }
func (GetExpenses) isQuery()             {}

// GetServicePrices возвращает прайс услуг для калькулятора.
type GetServicePrices struct{}

func (GetServicePrices) Action() string     { return "getServicePrices" }
func (GetServicePrices) Values() url.Values { return url.Values{} }
func (GetServicePrices) isQuery()           {}

// GetReceipts возвращает квитанции клиента.
type GetReceipts struct {
	ClientEmail string
}

func (GetReceipts) Action() string       { return "getReceipts" }
func (q GetReceipts) Values() url.Values { return url.Values{"clientEmail": {q.ClientEmail}} }
func (GetReceipts) isQuery()             {}

func optional(key, value string) url.Values {
	v := url.Values{}
	if value != "" {
		v.Set(key, value)
	}
	return v
}

// UpdateClientStatus меняет статус клиента.
type UpdateClientStatus struct {
	Email  string
	Status string
}

func (UpdateClientStatus) Mode() string { return "updateClientStatus" }
func (m UpdateClientStatus) Fields() map[string]any {
	return map[string]any{"email": m.Email, "status": m.Status}
}
func (UpdateClientStatus) isMutation() {}

// UpdateClientNotes перезаписывает заметки по клиенту.
type UpdateClientNotes struct {
	Email string
	Notes string
}

func (UpdateClientNotes) Mode() string { return "updateClientNotes" }
func (m UpdateClientNotes) Fields() map[string]any {
	return map[string]any{"email": m.Email, "notes": m.Notes}
}
func (UpdateClientNotes) isMutation() {}

// AddTimeEntry добавляет запись времени.
type AddTimeEntry struct {
	Entry models.TimeEntry
}

func (AddTimeEntry) Mode() string { return "addTimeEntry" }
func (m AddTimeEntry) Fields() map[string]any {
	return map[string]any{
		"employeeId":  m.Entry.EmployeeID,
		"clientEmail": m.Entry.ClientEmail,
		"date":        m.Entry.Date,
		"hours":       m.Entry.Hours,
		"description": m.Entry.Description,
	}
}
func (AddTimeEntry) isMutation() {}

// AddExpense добавляет расход.
type AddExpense struct {
	Expense models.Expense
}

func (AddExpense) Mode() string { return "addExpense" }
func (m AddExpense) Fields() map[string]any {
	return map[string]any{
		"clientEmail": m.Expense.ClientEmail,
		"date":        m.Expense.Date,
		"category":    m.Expense.Category,
		"amount":      m.Expense.Amount,
		"description": m.Expense.Description,
	}
}
func (AddExpense) isMutation() {}

// SubmitContactForm передаёт заявку с сайта.
type SubmitContactForm struct {
	Form models.ContactForm
}

func (SubmitContactForm) Mode() string { return "submitContactForm" }
func (m SubmitContactForm) Fields() map[string]any {
	return map[string]any{
		"name":    m.Form.Name,
		"email":   m.Form.Email,
		"phone":   m.Form.Phone,
		"service": m.Form.Service,
		"message": m.Form.Message,
	}
}
func (SubmitContactForm) isMutation() {}
