package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lotto-office/internal/models"
)

const userColumns = "id, telegram_id, name, COALESCE(phone, ''), role, income_percent"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	var tgID sql.NullInt64
	if err := row.Scan(&u.ID, &tgID, &u.Name, &u.Phone, &u.Role, &u.IncomePercent); err != nil {
		return u, err
	}
	if tgID.Valid {
		id := tgID.Int64
		u.TelegramID = &id
	}
	return u, nil
}

// UserByTelegramID finds the admin or agent linked to a Telegram account.
func (s *Store) UserByTelegramID(ctx context.Context, telegramID int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_id = ?", telegramID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("user by telegram id: %w", err)
	}
	return u, nil
}

// ListAgents returns every agent ordered by name.
func (s *Store) ListAgents(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users WHERE role = ? ORDER BY name ASC", models.RoleAgent)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts u and sets its ID.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	var tgID any
	if u.TelegramID != nil {
		tgID = *u.TelegramID
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (telegram_id, name, phone, role, income_percent) VALUES (?, ?, ?, ?, ?)",
		tgID, u.Name, u.Phone, u.Role, u.IncomePercent)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}
