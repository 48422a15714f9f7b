package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lotto-office/internal/models"
)

// SaveResult stores the winning numbers of a period, replacing any earlier
// result for the same period.
func (s *Store) SaveResult(ctx context.Context, r *models.Result) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO results (period_id, result_2up, result_2down, result_3up, result_3toad, result_date)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(period_id) DO UPDATE SET
			result_2up = excluded.result_2up,
			result_2down = excluded.result_2down,
			result_3up = excluded.result_3up,
			result_3toad = excluded.result_3toad,
			result_date = excluded.result_date`,
		r.PeriodID, r.Result2Up, r.Result2Down, r.Result3Up,
		strings.Join(r.Result3Toad, ","), r.ResultDate.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT id FROM results WHERE period_id = ?", r.PeriodID).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("read result id: %w", err)
	}
	return nil
}

// ResultForPeriod returns ErrNotFound while the draw has not been entered.
func (s *Store) ResultForPeriod(ctx context.Context, periodID int64) (*models.Result, error) {
	var r models.Result
	var toad, date string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, period_id, result_2up, result_2down, result_3up, result_3toad, result_date
		FROM results WHERE period_id = ?`, periodID).
		Scan(&r.ID, &r.PeriodID, &r.Result2Up, &r.Result2Down, &r.Result3Up, &toad, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("result for period: %w", err)
	}
	if toad != "" {
		r.Result3Toad = strings.Split(toad, ",")
	}
	r.ResultDate = parseTime(date)
	return &r, nil
}
