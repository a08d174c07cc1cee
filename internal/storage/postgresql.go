// Package storage реализует журнал заявок с сайта на PostgreSQL.
// Заявка записывается до отправки в бэкенд и помечается результатом после,
// так что потерянные при сбое upstream заявки можно найти и переотправить.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MindThoth/HeavyD-sub001/internal/models"
)

// ErrNotFound возвращается, если заявки с таким id нет.
var ErrNotFound = errors.New("submission not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB  *sql.DB
	now func() time.Time
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db, now: time.Now}, nil
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// CheckDatabaseReady проверяет, что миграции применены.
func CheckDatabaseReady(ctx context.Context, storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'submissions'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage.CheckDatabaseReady: %w", err)
	}
	if !exists {
		return fmt.Errorf("storage.CheckDatabaseReady: required table submissions missing")
	}
	return nil
}

// RecordSubmission сохраняет заявку и возвращает её id.
func (s *Storage) RecordSubmission(ctx context.Context, form models.ContactForm) (string, error) {
	const op = "storage.RecordSubmission"

	id := uuid.NewString()
	query := `INSERT INTO submissions (id, name, email, phone, service, message, received_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		id, form.Name, form.Email, form.Phone, form.Service, form.Message, s.now().UTC())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// MarkRelayed фиксирует ответ бэкенда на заявку.
func (s *Storage) MarkRelayed(ctx context.Context, id string, status int, accepted bool) error {
	const op = "storage.MarkRelayed"

	query := `UPDATE submissions
			  SET upstream_status = $2, accepted = $3, relayed_at = $4
			  WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, id, status, accepted, s.now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListSubmissions возвращает последние заявки, новые первыми.
func (s *Storage) ListSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	const op = "storage.ListSubmissions"
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, name, email, phone, service, message, received_at,
			         upstream_status, accepted, relayed_at
			  FROM submissions
			  ORDER BY received_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*models.Submission
	for rows.Next() {
		var (
			sub       models.Submission
			status    sql.NullInt32
			relayedAt sql.NullTime
		)
		err := rows.Scan(&sub.ID, &sub.Form.Name, &sub.Form.Email, &sub.Form.Phone,
			&sub.Form.Service, &sub.Form.Message, &sub.ReceivedAt,
			&status, &sub.Accepted, &relayedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if status.Valid {
			v := int(status.Int32)
			sub.UpstreamStatus = &v
		}
		if relayedAt.Valid {
			t := relayedAt.Time
			sub.RelayedAt = &t
		}
		res = append(res, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
