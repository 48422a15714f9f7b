package receipt

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func sectionKeys(r Receipt) []string {
	var keys []string
	for _, s := range r.Sections {
		keys = append(keys, s.Key)
	}
	return keys
}

func TestGroupMergesUpAndDown(t *testing.T) {
	b := models.Bill{Tickets: []models.Ticket{
		{Number: "12", BetType: models.Bet2Up, Price: d(20)},
		{Number: "12", BetType: models.Bet2Down, Price: d(30)},
	}}

	r := Group(b)
	require.Equal(t, []string{SectionTwoDigit}, sectionKeys(r))
	require.Len(t, r.Sections[0].Rows, 1)

	row := r.Sections[0].Rows[0]
	assert.Equal(t, "12", row.Number)
	assert.Equal(t, "20×30", row.Label())
}

func TestGroupTotalsRoundTrip(t *testing.T) {
	b := models.Bill{Tickets: []models.Ticket{
		{Number: "12", BetType: models.Bet2Up, Price: d(20)},
		{Number: "34", BetType: models.Bet2Down, Price: d(30)},
	}}
	b.TotalAmount = lotto.BillTotal(b.Tickets)
	require.True(t, b.TotalAmount.Equal(d(50)))

	r := Group(b)
	assert.True(t, r.Total.Equal(d(50)))
	assert.True(t, r.RowsTotal().Equal(d(50)))
	assert.Equal(t, []string{SectionTwoUp, SectionTwoDown}, sectionKeys(r))

	b.TotalAmount = decimal.Zero
	assert.True(t, Group(b).Total.Equal(d(50)))
}

func TestGroupSectionOrder(t *testing.T) {
	b := models.Bill{Tickets: []models.Ticket{
		{Number: "5", BetType: models.BetRunDown, Price: d(10)},
		{Number: "4", BetType: models.BetRunUp, Price: d(10)},
		{Number: "34", BetType: models.Bet2Down, Price: d(10)},
		{Number: "21", BetType: models.Bet2Up, Price: d(10)},
		{Number: "77", BetType: models.Bet2Up, Price: d(10)},
		{Number: "77", BetType: models.Bet2Down, Price: d(10)},
		{Number: "123", BetType: models.Bet3Up, Price: d(10)},
	}}

	r := Group(b)
	assert.Equal(t, []string{
		SectionThreeDigit, SectionTwoDigit, SectionTwoUp, SectionTwoDown, SectionRunUp, SectionRunDown,
	}, sectionKeys(r))
	assert.True(t, r.RowsTotal().Equal(lotto.BillTotal(b.Tickets)))
}

func TestGroupThreeDigit(t *testing.T) {
	b := models.Bill{Tickets: []models.Ticket{
		{Number: "123", BetType: models.Bet3Up, Price: d(10)},
		{Number: "123", BetType: models.Bet3Toad, Price: d(5)},
		{Number: "456", BetType: models.Bet3Toad, Price: d(20)},
		{Number: "789", BetType: models.Bet3Toad, Price: d(10), PriceToad: d(5)},
		{Number: "112", BetType: models.Bet3Up, Price: d(1), Reverse: true},
	}}

	r := Group(b)
	require.Equal(t, []string{SectionThreeDigit}, sectionKeys(r))

	rows := map[string]Row{}
	for _, row := range r.Sections[0].Rows {
		rows[row.Number] = row
	}
	assert.Len(t, rows, 6)
	assert.Equal(t, "10×5", rows["123"].Label())
	assert.Equal(t, "20", rows["456"].Label())
	assert.False(t, rows["456"].HasFirst)
	assert.Equal(t, "10×5", rows["789"].Label())
	assert.Equal(t, "1", rows["211"].Label())

	assert.True(t, r.RowsTotal().Equal(lotto.BillTotal(b.Tickets)))
}

func TestGroupReverseRows(t *testing.T) {
	b := models.Bill{Tickets: []models.Ticket{
		{Number: "25", BetType: models.Bet2Up, Price: d(10), Reverse: true},
	}}

	r := Group(b)
	require.Len(t, r.Sections, 1)
	require.Len(t, r.Sections[0].Rows, 2)
	assert.Equal(t, "25", r.Sections[0].Rows[0].Number)
	assert.Equal(t, "52", r.Sections[0].Rows[1].Number)
	assert.True(t, r.Total.Equal(d(20)))
}
