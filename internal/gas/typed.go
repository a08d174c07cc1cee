package gas

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// Login проверяет email и код доступа и возвращает профиль клиента в исходном виде.
func (c *Client) Login(ctx context.Context, email, accessCode string) (json.RawMessage, error) {
	env, err := c.Call(ctx, ClientLogin{Email: email, AccessCode: accessCode})
	if err != nil {
		return nil, err
	}
	var profile json.RawMessage
	if err := env.Decode(&profile, "client", "clientData", "data"); err != nil {
		return nil, protocolFromDecode("clientLogin", err)
	}
	return profile, nil
}

// Clients возвращает всех клиентов.
func (c *Client) Clients(ctx context.Context) ([]models.Client, error) {
	env, err := c.Call(ctx, GetAllClients{})
	if err != nil {
		return nil, err
	}
	var clients []models.Client
	if err := env.Decode(&clients, "clients", "data"); err != nil {
		return nil, protocolFromDecode("getAllClients", err)
	}
	return clients, nil
}

// ClientData возвращает профиль клиента.
func (c *Client) ClientData(ctx context.Context, email string) (models.Client, error) {
	env, err := c.Call(ctx, GetClientData{Email: email})
	if err != nil {
		return models.Client{}, err
	}
	var client models.Client
	if err := env.Decode(&client, "client", "data"); err != nil {
		return models.Client{}, protocolFromDecode("getClientData", err)
	}
	return client, nil
}

// ServicePrices возвращает прайс услуг.
func (c *Client) ServicePrices(ctx context.Context) ([]models.ServicePrice, error) {
	env, err := c.Call(ctx, GetServicePrices{})
	if err != nil {
		return nil, err
	}
	var prices []models.ServicePrice
	if err := env.Decode(&prices, "prices", "data"); err != nil {
		return nil, protocolFromDecode("getServicePrices", err)
	}
	return prices, nil
}

// Receipts возвращает квитанции клиента.
func (c *Client) Receipts(ctx context.Context, clientEmail string) ([]models.Receipt, error) {
	env, err := c.Call(ctx, GetReceipts{ClientEmail: clientEmail})
	if err != nil {
		return nil, err
	}
	var receipts []models.Receipt
	if err := env.Decode(&receipts, "receipts", "data"); err != nil {
		return nil, protocolFromDecode("getReceipts", err)
	}
	return receipts, nil
}

// Employees возвращает список сотрудников.
func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	env, err := c.Call(ctx, GetEmployees{})
	if err != nil {
		return nil, err
	}
	var employees []models.Employee
	if err := env.Decode(&employees, "employees", "data"); err != nil {
		return nil, protocolFromDecode("getEmployees", err)
	}
	return employees, nil
}

// TimeEntries возвращает записи времени; пустой clientEmail означает всех клиентов.
func (c *Client) TimeEntries(ctx context.Context, clientEmail string) ([]models.TimeEntry, error) {
	env, err := c.Call(ctx, GetTimeEntries{ClientEmail: clientEmail})
	if err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	if err := env.Decode(&entries, "timeEntries", "entries", "data"); err != nil {
		return nil, protocolFromDecode("getTimeEntries", err)
	}
	return entries, nil
}

// Expenses возвращает расходы; пустой clientEmail означает всех клиентов.
func (c *Client) Expenses(ctx context.Context, clientEmail string) ([]models.Expense, error) {
	env, err := c.Call(ctx, GetExpenses{ClientEmail: clientEmail})
	if err != nil {
		return nil, err
	}
	var expenses []models.Expense
	if err := env.Decode(&expenses, "expenses", "data"); err != nil {
		return nil, protocolFromDecode("getExpenses", err)
	}
	return expenses, nil
}

func protocolFromDecode(action string, err error) error {
	return &ProtocolError{Action: action, Status: 200, Reason: fmt.Sprintf("unexpected payload: %v", err)}
}
