package gas

// Route — логический обработчик на стороне бэкенда.
type Route int

const (
	// RoutePublic — обработчик без параметра api.
	RoutePublic Route = iota
	// RouteAdmin — административный обработчик, запрос уходит с api=admin.
	RouteAdmin
)

const adminAPI = "admin"

// DefaultRoutes сопоставляет действие или режим с обработчиком. Не перечисленные
// действия уходят в RoutePublic.
func DefaultRoutes() map[string]Route {
	return map[string]Route{
		"getAllClients":      RouteAdmin,
		"getEmployees":       RouteAdmin,
		"getTimeEntries":     RouteAdmin,
		"getExpenses":        RouteAdmin,
		"updateClientStatus": RouteAdmin,
		"updateClientNotes":  RouteAdmin,
		"addTimeEntry":       RouteAdmin,
		"addExpense":         RouteAdmin,

		"clientLogin":       RoutePublic,
		"getClientData":     RoutePublic,
		"getServicePrices":  RoutePublic,
		"getReceipts":       RoutePublic,
		"submitContactForm": RoutePublic,
	}
}
