package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"lotto-office/internal/bills"
	"lotto-office/internal/models"
)

const billSelect = `
	SELECT b.id, b.ref, b.agent_id, COALESCE(u.name, ''), b.buyer_name, b.period_id, p.period_name,
		b.total_amount, COALESCE(b.created_at, '')
	FROM bills b
	JOIN periods p ON b.period_id = p.id
	LEFT JOIN users u ON b.agent_id = u.id`

func scanBill(row interface{ Scan(...any) error }) (models.Bill, error) {
	var b models.Bill
	var agentID sql.NullInt64
	var created string
	err := row.Scan(&b.ID, &b.Ref, &agentID, &b.AgentName, &b.BuyerName, &b.PeriodID, &b.PeriodName,
		&b.TotalAmount, &created)
	if err != nil {
		return b, err
	}
	b.AgentID = agentID.Int64
	b.CreatedAt = parseTime(created)
	return b, nil
}

const ticketSelect = `
	SELECT t.id, t.bill_id, t.number, t.lotto_type, t.price, t.price_toad, t.is_reverse, t.is_half_price
	FROM tickets t`

func scanTicket(row interface{ Scan(...any) error }) (models.Ticket, error) {
	var t models.Ticket
	var lottoType string
	err := row.Scan(&t.ID, &t.BillID, &t.Number, &lottoType, &t.Price, &t.PriceToad, &t.Reverse, &t.IsHalfPrice)
	if err != nil {
		return t, err
	}
	// Rows written before the taxonomy settled may still carry old names.
	bt, combo, err := models.ParseBetType(lottoType)
	if err != nil {
		return t, err
	}
	t.BetType = models.ResolveCombo(bt, combo, t.PriceToad)
	return t, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTicket(ctx context.Context, ex execer, billID int64, t *models.Ticket) error {
	res, err := ex.ExecContext(ctx, `
		INSERT INTO tickets (bill_id, number, lotto_type, price, price_toad, is_reverse, is_half_price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		billID, t.Number, string(t.BetType), t.Price, t.PriceToad, t.Reverse, t.IsHalfPrice)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", t.Number, err)
	}
	t.ID, err = res.LastInsertId()
	t.BillID = billID
	t.IsNew = false
	return err
}

// CreateBill stores the bill and its tickets in one transaction and fills in
// the generated IDs.
func (s *Store) CreateBill(ctx context.Context, b *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		"INSERT INTO bills (ref, agent_id, buyer_name, period_id, total_amount) VALUES (?, ?, ?, ?, ?)",
		b.Ref, nullID(b.AgentID), b.BuyerName, b.PeriodID, b.TotalAmount)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	billID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("bill id: %w", err)
	}

	for i := range b.Tickets {
		if err := insertTicket(ctx, tx, billID, &b.Tickets[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bill: %w", err)
	}
	b.ID = billID
	return nil
}

// GetBill loads a bill with its tickets in entry order.
func (s *Store) GetBill(ctx context.Context, id int64) (models.Bill, error) {
	b, err := scanBill(s.db.QueryRowContext(ctx, billSelect+" WHERE b.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	if err != nil {
		return b, fmt.Errorf("get bill: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, ticketSelect+" WHERE t.bill_id = ? ORDER BY t.id ASC", id)
	if err != nil {
		return b, fmt.Errorf("get bill tickets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return b, fmt.Errorf("scan ticket: %w", err)
		}
		b.Tickets = append(b.Tickets, t)
	}
	return b, rows.Err()
}

// ListBills returns the bills of a period with their tickets. A non-zero
// agentID restricts the list to that agent's bills.
func (s *Store) ListBills(ctx context.Context, periodID, agentID int64) ([]models.Bill, error) {
	where := " WHERE b.period_id = ?"
	args := []any{periodID}
	if agentID > 0 {
		where += " AND b.agent_id = ?"
		args = append(args, agentID)
	}

	rows, err := s.db.QueryContext(ctx, billSelect+where+" ORDER BY b.id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	var list []models.Bill
	index := map[int64]int{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		index[b.ID] = len(list)
		list = append(list, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	trows, err := s.db.QueryContext(ctx,
		ticketSelect+" JOIN bills b ON t.bill_id = b.id"+where+" ORDER BY t.id ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("list bill tickets: %w", err)
	}
	defer trows.Close()
	for trows.Next() {
		t, err := scanTicket(trows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		if i, ok := index[t.BillID]; ok {
			list[i].Tickets = append(list[i].Tickets, t)
		}
	}
	return list, trows.Err()
}

// UpdateBill writes an edit session: stakes of kept tickets are updated,
// removed tickets deleted and new ones inserted, then the bill total.
func (s *Store) UpdateBill(ctx context.Context, b *models.Bill, c bills.Changes) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET buyer_name = ?, total_amount = ? WHERE id = ?",
		b.BuyerName, b.TotalAmount, b.ID)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if len(c.Removed) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(c.Removed)), ",")
		args := []any{b.ID}
		for _, id := range c.Removed {
			args = append(args, id)
		}
		_, err = tx.ExecContext(ctx, "DELETE FROM tickets WHERE bill_id = ? AND id IN ("+placeholders+")", args...)
		if err != nil {
			return fmt.Errorf("delete tickets: %w", err)
		}
	}

	for _, t := range c.Kept {
		_, err = tx.ExecContext(ctx,
			"UPDATE tickets SET price = ?, price_toad = ?, is_half_price = ? WHERE id = ? AND bill_id = ?",
			t.Price, t.PriceToad, t.IsHalfPrice, t.ID, b.ID)
		if err != nil {
			return fmt.Errorf("update ticket %d: %w", t.ID, err)
		}
	}
	for i := range c.Added {
		if err := insertTicket(ctx, tx, b.ID, &c.Added[i]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteBill removes a bill and its tickets.
func (s *Store) DeleteBill(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	defer rollback(tx)

	if _, err = tx.ExecContext(ctx, "DELETE FROM tickets WHERE bill_id = ?", id); err != nil {
		return fmt.Errorf("delete tickets: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
