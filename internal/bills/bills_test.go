package bills

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var openPeriod = models.Period{ID: 7, Name: "16/10/2026", Status: models.PeriodOpen, IsCurrent: true}

func TestValidateTicket(t *testing.T) {
	ok := []models.Ticket{
		{Number: "12", BetType: models.Bet2Up, Price: d(10)},
		{Number: "123", BetType: models.Bet3Toad, Price: d(0), PriceToad: d(5)},
		{Number: "5", BetType: models.BetRunDown, Price: d(1)},
	}
	for _, tk := range ok {
		assert.NoError(t, ValidateTicket(tk), "%+v", tk)
	}

	bad := []models.Ticket{
		{Number: "123", BetType: models.Bet2Up, Price: d(10)},
		{Number: "1a", BetType: models.Bet2Up, Price: d(10)},
		{Number: "12", BetType: models.Bet2Up, Price: d(-1)},
		{Number: "12", BetType: models.Bet2Up},
		{Number: "12", BetType: models.Bet2UpDown, Price: d(10)},
		{Number: "", BetType: models.Bet3Up, Price: d(10)},
	}
	for _, tk := range bad {
		err := ValidateTicket(tk)
		assert.ErrorIs(t, err, ErrInvalid, "%+v", tk)
	}
}

func TestPendingDuplicate(t *testing.T) {
	p := NewPending()
	require.NoError(t, p.Add(models.Ticket{Number: "12", BetType: models.Bet2Up, Price: d(20)}))

	err := p.Add(models.Ticket{Number: "12", BetType: models.Bet2Up, Price: d(50)})
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "12", dup.Number)
	assert.Equal(t, 1, p.Len())

	// same number in another bet type is fine
	require.NoError(t, p.Add(models.Ticket{Number: "12", BetType: models.Bet2Down, Price: d(20)}))

	// a reverse entry covering 12 collides with the existing 2up
	err = p.Add(models.Ticket{Number: "21", BetType: models.Bet2Up, Price: d(20), Reverse: true})
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, 2, p.Len())
}

func TestAddEntryUpDown(t *testing.T) {
	p := NewPending()
	require.NoError(t, p.AddEntry(Entry{Number: "45", BetType: "2updown", Price: d(20), PriceDown: d(30)}))

	tickets := p.Tickets()
	require.Len(t, tickets, 2)
	assert.Equal(t, models.Bet2Up, tickets[0].BetType)
	assert.True(t, tickets[0].Price.Equal(d(20)))
	assert.Equal(t, models.Bet2Down, tickets[1].BetType)
	assert.True(t, tickets[1].Price.Equal(d(30)))

	// the 2down leg would collide, so neither leg is added
	p2 := NewPending()
	require.NoError(t, p2.Add(models.Ticket{Number: "45", BetType: models.Bet2Down, Price: d(10)}))
	err := p2.AddEntry(Entry{Number: "45", BetType: "2updown", Price: d(20)})
	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, 1, p2.Len())
}

func TestAddEntryLegacyStraightToad(t *testing.T) {
	p := NewPending()
	require.NoError(t, p.AddEntry(Entry{Number: "123", BetType: "3straight_toad", Price: d(10), PriceToad: d(5), Reverse: true}))

	tickets := p.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, models.Bet3Toad, tickets[0].BetType)
	assert.False(t, tickets[0].Reverse)
	assert.True(t, p.Total().Equal(d(15)))
}

func TestAddEntryLegacyStraightOnly(t *testing.T) {
	p := NewPending()
	require.NoError(t, p.AddEntry(Entry{Number: "123", BetType: "3straight_toad", Price: d(10), Reverse: true}))

	tickets := p.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, models.Bet3Up, tickets[0].BetType)
	assert.False(t, tickets[0].Reverse)
	assert.True(t, p.Total().Equal(d(10)))

	wins := lotto.CheckTicket(tickets[0], &models.Result{Result3Up: "123"}, nil, lotto.DefaultRates())
	require.Len(t, wins, 1)
	assert.Equal(t, models.Bet3Up, wins[0].BetType)
	assert.True(t, wins[0].Amount.Equal(d(9000)), wins[0].Amount.String())
}

func TestBuild(t *testing.T) {
	p := NewPending()
	require.NoError(t, p.Add(models.Ticket{Number: "12", BetType: models.Bet2Up, Price: d(20)}))
	require.NoError(t, p.Add(models.Ticket{Number: "34", BetType: models.Bet2Down, Price: d(30)}))

	b, err := Build("  Somchai ", 3, openPeriod, p, []models.HalfPriceEntry{{Number: "34"}})
	require.NoError(t, err)
	assert.Equal(t, "Somchai", b.BuyerName)
	assert.Equal(t, int64(7), b.PeriodID)
	assert.NotEmpty(t, b.Ref)
	assert.True(t, b.TotalAmount.Equal(d(50)))
	assert.False(t, b.Tickets[0].IsHalfPrice)
	assert.True(t, b.Tickets[1].IsHalfPrice)

	_, err = Build("", 3, openPeriod, p, nil)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, 2, p.Len())

	_, err = Build("Somchai", 3, openPeriod, NewPending(), nil)
	assert.ErrorIs(t, err, ErrInvalid)

	closed := openPeriod
	closed.Status = models.PeriodClosed
	_, err = Build("Somchai", 3, closed, p, nil)
	assert.ErrorIs(t, err, ErrPeriodClosed)
}

func TestEditFlow(t *testing.T) {
	saved := models.Bill{
		ID:        9,
		BuyerName: "Malee",
		PeriodID:  openPeriod.ID,
		Tickets: []models.Ticket{
			{ID: 100, BillID: 9, Number: "12", BetType: models.Bet2Up, Price: d(20)},
			{ID: 101, BillID: 9, Number: "34", BetType: models.Bet2Down, Price: d(30)},
		},
	}

	p := LoadForEdit(saved)
	for _, tk := range p.Tickets() {
		assert.False(t, tk.IsNew)
	}

	require.NoError(t, p.SetPrice(0, d(25), decimal.Zero))
	require.NoError(t, p.Remove(1))
	require.NoError(t, p.Add(models.Ticket{Number: "567", BetType: models.Bet3Up, Price: d(10)}))

	assert.ErrorIs(t, p.SetPrice(0, d(-5), decimal.Zero), ErrInvalid)
	assert.ErrorIs(t, p.Remove(5), ErrInvalid)

	b, c, err := BuildUpdate(saved, "", openPeriod, p, nil)
	require.NoError(t, err)
	assert.Equal(t, "Malee", b.BuyerName)
	assert.True(t, b.TotalAmount.Equal(d(35)))

	require.Len(t, c.Kept, 1)
	assert.Equal(t, int64(100), c.Kept[0].ID)
	assert.True(t, c.Kept[0].Price.Equal(d(25)))
	require.Len(t, c.Added, 1)
	assert.Equal(t, "567", c.Added[0].Number)
	assert.Equal(t, []int64{101}, c.Removed)

	other := openPeriod
	other.ID = 8
	_, _, err = BuildUpdate(saved, "", other, p, nil)
	assert.ErrorIs(t, err, ErrPeriodClosed)
}
