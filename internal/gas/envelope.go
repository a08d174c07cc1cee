package gas

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope — конверт {success, message, ...payload}, в который бэкенд заворачивает каждый ответ.
type Envelope struct {
	Success bool
	Message string
	Fields  map[string]json.RawMessage
}

// decodeEnvelope разбирает тело ответа. Отсутствие поля success считается нарушением
// протокола, а не ложное значение.
func decodeEnvelope(action string, status int, body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, &ProtocolError{Action: action, Status: status, Reason: "response body is not a JSON object"}
	}
	raw, ok := fields["success"]
	if !ok {
		return nil, &ProtocolError{Action: action, Status: status, Reason: "response has no success field"}
	}
	var success bool
	if err := json.Unmarshal(raw, &success); err != nil {
		return nil, &ProtocolError{Action: action, Status: status, Reason: "success field is not a boolean"}
	}

	env := &Envelope{Success: success, Fields: fields}
	env.Message = stringField(fields, "message")
	if env.Message == "" {
		env.Message = stringField(fields, "error")
	}
	return env, nil
}

func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Has сообщает, есть ли в конверте поле name.
func (e *Envelope) Has(name string) bool {
	_, ok := e.Fields[name]
	return ok
}

// Decode декодирует первое присутствующее поле из names в out.
// Бэкенд кладёт полезную нагрузку то в data, то в поле по имени сущности.
func (e *Envelope) Decode(out any, names ...string) error {
	for _, name := range names {
		raw, ok := e.Fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("gas: decode field %q: %w", name, err)
		}
		return nil
	}
	return fmt.Errorf("gas: envelope has none of fields %s", strings.Join(names, ", "))
}

// isUnknownAction распознаёт ответ обработчика, которому действие не известно.
// Такой ответ может и не быть конвертом, например {"error":"Unknown action: getAllClients"}.
func isUnknownAction(body []byte) bool {
	var fields struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	const marker = "unknown action"
	return strings.Contains(strings.ToLower(fields.Error), marker) ||
		strings.Contains(strings.ToLower(fields.Message), marker)
}
