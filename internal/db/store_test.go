package db

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-office/internal/bills"
	"lotto-office/internal/models"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(conn), mock
}

func TestCreateTables(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, CreateTables(context.Background(), conn))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPeriodClosesOthers(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE periods SET status = 'closed', is_current = 0 WHERE id <> \?`).
		WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE periods SET status = 'open', is_current = 1 WHERE id = \?`).
		WithArgs(4).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.OpenPeriod(context.Background(), 4))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenPeriodMissing(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE periods SET status = 'closed'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE periods SET status = 'open'`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	assert.ErrorIs(t, s.OpenPeriod(context.Background(), 99), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentPeriod(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`FROM periods WHERE is_current = 1`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "period_name", "period_date", "status", "is_current"}).
			AddRow(4, "16 ต.ค. 69", "2026-10-16", "open", true))

	p, err := s.CurrentPeriod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.ID)
	assert.True(t, p.IsOpen())
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), p.Date)

	mock.ExpectQuery(`FROM periods WHERE is_current = 1`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "period_name", "period_date", "status", "is_current"}))
	_, err = s.CurrentPeriod(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBill(t *testing.T) {
	s, mock := newMock(t)

	b := &models.Bill{
		Ref: "ref-1", AgentID: 2, BuyerName: "Somchai", PeriodID: 4,
		TotalAmount: decimal.NewFromInt(50),
		Tickets: []models.Ticket{
			{Number: "12", BetType: models.Bet2Up, Price: decimal.NewFromInt(20), IsNew: true},
			{Number: "34", BetType: models.Bet2Down, Price: decimal.NewFromInt(30), IsNew: true},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bills`).
		WithArgs("ref-1", 2, "Somchai", 4, "50").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(11, "12", "2up", "20", "0", false, false).
		WillReturnResult(sqlmock.NewResult(101, 1))
	mock.ExpectExec(`INSERT INTO tickets`).
		WithArgs(11, "34", "2down", "30", "0", false, false).
		WillReturnResult(sqlmock.NewResult(102, 1))
	mock.ExpectCommit()

	require.NoError(t, s.CreateBill(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, int64(101), b.Tickets[0].ID)
	assert.Equal(t, int64(102), b.Tickets[1].ID)
	assert.False(t, b.Tickets[0].IsNew)
}

func TestCreateBillWithoutAgent(t *testing.T) {
	s, mock := newMock(t)

	b := &models.Bill{
		Ref: "ref-office", BuyerName: "Walk-in", PeriodID: 4,
		TotalAmount: decimal.NewFromInt(20),
		Tickets:     []models.Ticket{{Number: "12", BetType: models.Bet2Up, Price: decimal.NewFromInt(20)}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bills`).
		WithArgs("ref-office", nil, "Walk-in", 4, "20").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`INSERT INTO tickets`).WillReturnResult(sqlmock.NewResult(110, 1))
	mock.ExpectCommit()

	require.NoError(t, s.CreateBill(context.Background(), b))
	require.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(`FROM bills b`).WithArgs(12).WillReturnRows(
		sqlmock.NewRows([]string{"id", "ref", "agent_id", "agent", "buyer_name", "period_id", "period_name", "total_amount", "created_at"}).
			AddRow(12, "ref-office", nil, "", "Walk-in", 4, "16 ต.ค. 69", 20.0, "2026-10-15 08:30:00"))
	mock.ExpectQuery(`FROM tickets t WHERE t.bill_id = \?`).WithArgs(12).WillReturnRows(
		sqlmock.NewRows([]string{"id", "bill_id", "number", "lotto_type", "price", "price_toad", "is_reverse", "is_half_price"}))

	got, err := s.GetBill(context.Background(), 12)
	require.NoError(t, err)
	assert.Zero(t, got.AgentID)
}

func TestGetBillNormalizesLegacyType(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`FROM bills b`).WithArgs(11).WillReturnRows(
		sqlmock.NewRows([]string{"id", "ref", "agent_id", "agent", "buyer_name", "period_id", "period_name", "total_amount", "created_at"}).
			AddRow(11, "ref-1", 2, "Agent", "Somchai", 4, "16 ต.ค. 69", 15.0, "2026-10-15 08:30:00"))
	mock.ExpectQuery(`FROM tickets t WHERE t.bill_id = \?`).WithArgs(11).WillReturnRows(
		sqlmock.NewRows([]string{"id", "bill_id", "number", "lotto_type", "price", "price_toad", "is_reverse", "is_half_price"}).
			AddRow(101, 11, "123", "3straight_toad", 10.0, 5.0, false, false))

	b, err := s.GetBill(context.Background(), 11)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, b.Tickets, 1)
	assert.Equal(t, models.Bet3Toad, b.Tickets[0].BetType)
	assert.True(t, b.Tickets[0].HasToadLeg())
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, 2026, b.CreatedAt.Year())
}

func TestGetBillLegacyStraightOnly(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`FROM bills b`).WithArgs(12).WillReturnRows(
		sqlmock.NewRows([]string{"id", "ref", "agent_id", "agent", "buyer_name", "period_id", "period_name", "total_amount", "created_at"}).
			AddRow(12, "ref-2", 2, "Agent", "Somchai", 4, "16 ต.ค. 69", 10.0, "2026-10-15 08:30:00"))
	mock.ExpectQuery(`FROM tickets t WHERE t.bill_id = \?`).WithArgs(12).WillReturnRows(
		sqlmock.NewRows([]string{"id", "bill_id", "number", "lotto_type", "price", "price_toad", "is_reverse", "is_half_price"}).
			AddRow(105, 12, "123", "3straight_toad", 10.0, 0.0, false, false))

	b, err := s.GetBill(context.Background(), 12)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, b.Tickets, 1)
	assert.Equal(t, models.Bet3Up, b.Tickets[0].BetType)
	assert.False(t, b.Tickets[0].HasToadLeg())
}

func TestUpdateBill(t *testing.T) {
	s, mock := newMock(t)

	b := &models.Bill{ID: 11, BuyerName: "Somchai", TotalAmount: decimal.NewFromInt(35)}
	c := bills.Changes{
		Kept:    []models.Ticket{{ID: 101, Price: decimal.NewFromInt(25)}},
		Added:   []models.Ticket{{Number: "567", BetType: models.Bet3Up, Price: decimal.NewFromInt(10)}},
		Removed: []int64{102},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bills SET buyer_name`).WithArgs("Somchai", "35", 11).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tickets WHERE bill_id = \? AND id IN \(\?\)`).WithArgs(11, 102).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tickets SET price`).WithArgs("25", "0", false, 101, 11).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO tickets`).WillReturnResult(sqlmock.NewResult(103, 1))
	mock.ExpectCommit()

	require.NoError(t, s.UpdateBill(context.Background(), b, c))
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, int64(103), c.Added[0].ID)
}

func TestHalfPricesEmpty(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`FROM half_prices WHERE period_id = \?`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "period_id", "lotto_type", "number"}))

	entries, err := s.HalfPrices(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAddHalfPrices(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT OR IGNORE INTO half_prices`)
	prep.ExpectExec().WithArgs(4, "3digit", "123").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(4, "3digit", "132").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := s.AddHalfPrices(context.Background(), 4, []string{"123", "132"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResultForPeriod(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(`FROM results WHERE period_id = \?`).WithArgs(4).WillReturnRows(
		sqlmock.NewRows([]string{"id", "period_id", "result_2up", "result_2down", "result_3up", "result_3toad", "result_date"}).
			AddRow(1, 4, "45", "07", "345", "345,354,435,453,534,543", "2026-10-16"))

	r, err := s.ResultForPeriod(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, r.Result3Toad, 6)
	assert.Equal(t, "345", r.Result3Up)

	mock.ExpectQuery(`FROM results WHERE period_id = \?`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.ResultForPeriod(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
