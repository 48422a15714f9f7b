package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lotto-office/internal/models"
)

const periodColumns = "id, period_name, period_date, status, is_current"

func scanPeriod(row interface{ Scan(...any) error }) (models.Period, error) {
	var p models.Period
	var date string
	if err := row.Scan(&p.ID, &p.Name, &date, &p.Status, &p.IsCurrent); err != nil {
		return p, err
	}
	p.Date = parseTime(date)
	return p, nil
}

func (s *Store) ListPeriods(ctx context.Context) ([]models.Period, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+periodColumns+" FROM periods ORDER BY period_date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var periods []models.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (s *Store) GetPeriod(ctx context.Context, id int64) (models.Period, error) {
	return s.onePeriod(ctx, "SELECT "+periodColumns+" FROM periods WHERE id = ?", id)
}

// CurrentPeriod returns the period flagged as current, ErrNotFound if none is.
func (s *Store) CurrentPeriod(ctx context.Context) (models.Period, error) {
	return s.onePeriod(ctx, "SELECT "+periodColumns+" FROM periods WHERE is_current = 1 ORDER BY id DESC LIMIT 1")
}

func (s *Store) onePeriod(ctx context.Context, query string, args ...any) (models.Period, error) {
	p, err := scanPeriod(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, fmt.Errorf("get period: %w", err)
	}
	return p, nil
}

// CreatePeriod inserts a closed period; opening it is a separate step.
func (s *Store) CreatePeriod(ctx context.Context, p *models.Period) error {
	p.Status = models.PeriodClosed
	p.IsCurrent = false
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO periods (period_name, period_date, status, is_current) VALUES (?, ?, ?, 0)",
		p.Name, p.Date.Format(dateLayout), p.Status)
	if err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// OpenPeriod opens the period and makes it current. Every other period is
// closed in the same transaction so at most one is ever open.
func (s *Store) OpenPeriod(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("open period: %w", err)
	}
	defer rollback(tx)

	if _, err = tx.ExecContext(ctx, "UPDATE periods SET status = 'closed', is_current = 0 WHERE id <> ?", id); err != nil {
		return fmt.Errorf("close other periods: %w", err)
	}
	res, err := tx.ExecContext(ctx, "UPDATE periods SET status = 'open', is_current = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("open period: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ClosePeriod stops sales; the period stays current until another is opened.
func (s *Store) ClosePeriod(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE periods SET status = 'closed' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("close period: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
