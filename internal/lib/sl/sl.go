// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель: единообразно выводить ошибки и не допускать утечки
// секретных адресов upstream в логи.
package sl

import (
	"log/slog"
	"net/url"
)

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to relay request", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Upstream возвращает атрибут "upstream" только с хостом адреса.
// Путь развёрнутого Apps Script содержит идентификатор деплоя и в лог не попадает.
func Upstream(raw string) slog.Attr {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return slog.String("upstream", "<invalid>")
	}
	return slog.String("upstream", u.Scheme+"://"+u.Host)
}
