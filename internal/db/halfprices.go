package db

import (
	"context"
	"fmt"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// HalfPrices lists the half-price numbers of a period. A period without any
// gives an empty list.
func (s *Store) HalfPrices(ctx context.Context, periodID int64) ([]models.HalfPriceEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, period_id, COALESCE(lotto_type, ''), number FROM half_prices WHERE period_id = ? ORDER BY number ASC",
		periodID)
	if err != nil {
		return nil, fmt.Errorf("half prices: %w", err)
	}
	defer rows.Close()

	entries := []models.HalfPriceEntry{}
	for rows.Next() {
		var e models.HalfPriceEntry
		if err := rows.Scan(&e.ID, &e.PeriodID, &e.LottoType, &e.Number); err != nil {
			return nil, fmt.Errorf("scan half price: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddHalfPrices flags numbers for a period. Numbers already on the list are
// skipped; the count of inserted rows is returned.
func (s *Store) AddHalfPrices(ctx context.Context, periodID int64, numbers []string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("add half prices: %w", err)
	}
	defer rollback(tx)

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO half_prices (period_id, lotto_type, number) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare half price insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, n := range numbers {
		res, err := stmt.ExecContext(ctx, periodID, lotto.HalfPriceCategory(n), n)
		if err != nil {
			return 0, fmt.Errorf("insert half price %s: %w", n, err)
		}
		if c, _ := res.RowsAffected(); c > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit half prices: %w", err)
	}
	return added, nil
}

func (s *Store) DeleteHalfPrice(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM half_prices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete half price: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
