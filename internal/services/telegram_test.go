package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

func TestBillMessage(t *testing.T) {
	b := models.Bill{ID: 12, BuyerName: "Somchai", PeriodName: "16 ต.ค. 69", Tickets: []models.Ticket{
		{Number: "12", BetType: models.Bet2Up, Price: decimal.NewFromInt(20)},
		{Number: "12", BetType: models.Bet2Down, Price: decimal.NewFromInt(30)},
	}}
	b.TotalAmount = lotto.BillTotal(b.Tickets)

	msg := BillMessage(b, "Agent A")
	assert.Contains(t, msg, "#12")
	assert.Contains(t, msg, "Somchai")
	assert.Contains(t, msg, "12 = 20×30")
	assert.Contains(t, msg, "50.00")
}

func TestResultMessage(t *testing.T) {
	r := models.Result{Result2Up: "45", Result2Down: "07", Result3Up: "345", Result3Toad: lotto.ToadNumbers("345")}
	msg := ResultMessage(models.Period{Name: "16 ต.ค. 69"}, r, decimal.NewFromInt(900))

	assert.Contains(t, msg, "345 354 435 453 534 543")
	assert.Contains(t, msg, "900.00")
}
