package bills

import (
	"strings"

	"github.com/google/uuid"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// Build turns the pending list into a bill ready to be saved. Half-price
// flags are resolved against the period's list and the total is computed.
// The pending list is not modified, so a failed save can be retried.
func Build(buyerName string, agentID int64, period models.Period, p *Pending, halfPrices []models.HalfPriceEntry) (models.Bill, error) {
	if !period.IsOpen() {
		return models.Bill{}, ErrPeriodClosed
	}

	b := models.Bill{
		Ref:        uuid.NewString(),
		AgentID:    agentID,
		BuyerName:  strings.TrimSpace(buyerName),
		PeriodID:   period.ID,
		PeriodName: period.Name,
		Tickets:    p.Tickets(),
	}
	if err := ValidateBill(b); err != nil {
		return models.Bill{}, err
	}

	lotto.MarkHalfPrice(b.Tickets, halfPrices)
	b.TotalAmount = lotto.BillTotal(b.Tickets)
	return b, nil
}

// BuildUpdate applies an edit session to a saved bill and returns the updated
// bill along with the rows the store has to write.
func BuildUpdate(saved models.Bill, buyerName string, period models.Period, p *Pending, halfPrices []models.HalfPriceEntry) (models.Bill, Changes, error) {
	if !period.IsOpen() || saved.PeriodID != period.ID {
		return models.Bill{}, Changes{}, ErrPeriodClosed
	}

	b := saved
	b.BuyerName = strings.TrimSpace(buyerName)
	if b.BuyerName == "" {
		b.BuyerName = saved.BuyerName
	}
	b.Tickets = p.Tickets()
	if err := ValidateBill(b); err != nil {
		return models.Bill{}, Changes{}, err
	}

	lotto.MarkHalfPrice(b.Tickets, halfPrices)
	b.TotalAmount = lotto.BillTotal(b.Tickets)

	c := p.Changes()
	lotto.MarkHalfPrice(c.Kept, halfPrices)
	lotto.MarkHalfPrice(c.Added, halfPrices)
	return b, c, nil
}
