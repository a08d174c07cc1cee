package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore хранит запись в JSON-файле на машине пользователя.
type FileStore struct {
	path string
}

// NewFileStore создаёт хранилище по пути path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath возвращает heavyd/session.json в пользовательском каталоге конфигурации.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("session.DefaultPath: %w", err)
	}
	return filepath.Join(dir, "heavyd", "session.json"), nil
}

// Path возвращает путь к файлу сессии.
func (s *FileStore) Path() string { return s.path }

// Save атомарно перезаписывает файл: запись идёт во временный файл рядом, затем rename.
func (s *FileStore) Save(_ context.Context, rec Record) error {
	const op = "session.FileStore.Save"
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает запись. Записи без срока действия: проверка кода доступа
// остаётся за бэкендом при повторном входе.
func (s *FileStore) Load(_ context.Context) (Record, error) {
	const op = "session.FileStore.Load"
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, ErrNoSession
	}
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return Record{}, fmt.Errorf("%s: %w", op, err)
	}
	return rec, nil
}

// Clear удаляет файл сессии.
func (s *FileStore) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session.FileStore.Clear: %w", err)
	}
	return nil
}
