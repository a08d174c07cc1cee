// Package docs регистрирует OpenAPI-описание шлюза для /docs.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/gas": {
            "get": {
                "tags": ["Proxy"],
                "summary": "Прокси к Apps Script (дашборд)",
                "parameters": [{"type": "string", "description": "Действие бэкенда", "name": "action", "in": "query"}],
                "responses": {"200": {"description": "Ответ upstream"}, "500": {"description": "Сбой пересылки"}}
            },
            "post": {
                "tags": ["Proxy"],
                "summary": "Прокси к Apps Script (дашборд)",
                "responses": {"200": {"description": "Ответ upstream"}, "500": {"description": "Сбой пересылки"}}
            }
        },
        "/admin/api/gas": {
            "get": {
                "tags": ["Proxy"],
                "summary": "Прокси к Apps Script (админка)",
                "responses": {"200": {"description": "Ответ upstream"}, "500": {"description": "Сбой пересылки"}}
            },
            "post": {
                "tags": ["Proxy"],
                "summary": "Прокси к Apps Script (админка)",
                "responses": {"200": {"description": "Ответ upstream"}, "500": {"description": "Сбой пересылки"}}
            }
        },
        "/api/submit-form": {
            "post": {
                "tags": ["Website"],
                "summary": "Отправить заявку с сайта",
                "parameters": [{"description": "Заявка", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ContactForm"}}],
                "responses": {
                    "200": {"description": "Ответ upstream"},
                    "400": {"description": "Некорректный JSON", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Вход клиента",
                "parameters": [{"description": "Учетные данные клиента", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}],
                "responses": {
                    "200": {"description": "Успешный вход"},
                    "401": {"description": "Неверные учетные данные", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/session": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Текущая сессия",
                "responses": {"200": {"description": "Сессия"}, "401": {"description": "Сессия недействительна"}}
            }
        },
        "/api/v1/session/receipts": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Квитанции клиента",
                "responses": {"200": {"description": "Квитанции"}, "401": {"description": "Сессия недействительна"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Выход клиента",
                "responses": {"200": {"description": "Сессия завершена"}, "401": {"description": "Токен недействителен"}}
            }
        },
        "/api/v1/clients": {
            "get": {
                "tags": ["Clients"],
                "summary": "Список клиентов",
                "responses": {"200": {"description": "Список клиентов"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/clients/{email}": {
            "get": {
                "tags": ["Clients"],
                "summary": "Профиль клиента",
                "parameters": [{"type": "string", "description": "Email клиента", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "Профиль"}, "400": {"description": "Некорректный email"}, "422": {"description": "Отказ бэкенда"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/clients/{email}/status": {
            "put": {
                "tags": ["Clients"],
                "summary": "Изменить статус клиента",
                "parameters": [{"type": "string", "description": "Email клиента", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "Статус изменён"}, "422": {"description": "Ошибка валидации или отказ бэкенда"}}
            }
        },
        "/api/v1/clients/{email}/notes": {
            "put": {
                "tags": ["Clients"],
                "summary": "Изменить заметки о клиенте",
                "parameters": [{"type": "string", "description": "Email клиента", "name": "email", "in": "path", "required": true}],
                "responses": {"200": {"description": "Заметки сохранены"}, "422": {"description": "Ошибка валидации или отказ бэкенда"}}
            }
        },
        "/api/v1/employees": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Сотрудники",
                "responses": {"200": {"description": "Сотрудники"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/time-entries": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Учёт времени",
                "parameters": [{"type": "string", "description": "Email клиента", "name": "clientEmail", "in": "query"}],
                "responses": {"200": {"description": "Записи времени"}, "400": {"description": "Некорректный email"}, "502": {"description": "Бэкенд недоступен"}}
            },
            "post": {
                "tags": ["Ledger"],
                "summary": "Добавить запись времени",
                "parameters": [{"description": "Запись времени", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ledger.TimeEntryRequest"}}],
                "responses": {"201": {"description": "Запись добавлена"}, "400": {"description": "Некорректный JSON"}, "422": {"description": "Ошибка валидации или отказ бэкенда"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/expenses": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Расходы",
                "parameters": [{"type": "string", "description": "Email клиента", "name": "clientEmail", "in": "query"}],
                "responses": {"200": {"description": "Расходы"}, "400": {"description": "Некорректный email"}, "502": {"description": "Бэкенд недоступен"}}
            },
            "post": {
                "tags": ["Ledger"],
                "summary": "Добавить расход",
                "parameters": [{"description": "Расход", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ledger.ExpenseRequest"}}],
                "responses": {"201": {"description": "Расход добавлен"}, "400": {"description": "Некорректный JSON"}, "422": {"description": "Ошибка валидации или отказ бэкенда"}, "502": {"description": "Бэкенд недоступен"}}
            }
        },
        "/api/v1/pricing/quote": {
            "post": {
                "tags": ["Pricing"],
                "summary": "Рассчитать стоимость",
                "responses": {"200": {"description": "Расчёт"}, "422": {"description": "Ошибка валидации или неизвестная услуга"}}
            }
        },
        "/api/v1/submissions": {
            "get": {
                "tags": ["Website"],
                "summary": "Журнал заявок",
                "parameters": [{"type": "integer", "description": "Сколько заявок вернуть (по умолчанию 50, не больше 500)", "name": "limit", "in": "query"}],
                "responses": {"200": {"description": "Заявки"}, "400": {"description": "Некорректный limit"}, "500": {"description": "Ошибка журнала"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["Health"],
                "summary": "Проверка состояния",
                "responses": {"200": {"description": "Все зависимости доступны"}, "503": {"description": "Зависимость недоступна"}}
            }
        }
    },
    "definitions": {
        "ledger.ExpenseRequest": {
            "type": "object",
            "required": ["amount", "category", "clientEmail", "date"],
            "properties": {
                "amount": {"type": "string"},
                "category": {"type": "string"},
                "clientEmail": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "ledger.TimeEntryRequest": {
            "type": "object",
            "required": ["clientEmail", "date", "employeeId", "hours"],
            "properties": {
                "clientEmail": {"type": "string"},
                "date": {"type": "string"},
                "description": {"type": "string"},
                "employeeId": {"type": "string"},
                "hours": {"type": "string"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["accessCode", "email"],
            "properties": {"accessCode": {"type": "string"}, "email": {"type": "string"}}
        },
        "models.ContactForm": {
            "type": "object",
            "required": ["email", "message", "name"],
            "properties": {
                "email": {"type": "string"},
                "message": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "service": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "invalid request body"},
                "success": {"type": "boolean", "example": false}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HeavyD Gateway API",
	Description:      "Прокси к Apps Script, приём заявок с сайта и API дашборда",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
