package lotto

import (
	"strings"

	"github.com/shopspring/decimal"

	"lotto-office/internal/models"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice is the stake paid per concrete number. The toad stake of a
// 3toad ticket is added on top of the main price, both legs are paid for.
func EffectivePrice(t models.Ticket) decimal.Decimal {
	if t.HasToadLeg() {
		return t.Price.Add(t.PriceToad)
	}
	return t.Price
}

// TicketTotal is the amount charged for a ticket: the effective price times
// the number of concrete numbers it expands to.
func TicketTotal(t models.Ticket) decimal.Decimal {
	n := int64(len(ExpandTicket(t)))
	return EffectivePrice(t).Mul(decimal.NewFromInt(n))
}

// BillTotal sums TicketTotal over tickets.
func BillTotal(tickets []models.Ticket) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(TicketTotal(t))
	}
	return total
}

// Rates maps a bet type to its payout multiplier. The straight leg of a
// combination 3toad ticket pays at the 3up rate.
type Rates map[models.BetType]decimal.Decimal

// DefaultRates are the multipliers used when no rate file is configured.
func DefaultRates() Rates {
	return Rates{
		models.Bet2Up:     decimal.NewFromInt(90),
		models.Bet2Down:   decimal.NewFromInt(90),
		models.Bet3Up:     decimal.NewFromInt(900),
		models.Bet3Toad:   decimal.NewFromInt(150),
		models.BetRunUp:   decimal.NewFromInt(3),
		models.BetRunDown: decimal.NewFromInt(4),
	}
}

// Rate returns the multiplier for bt, halved for half-price numbers.
func (r Rates) Rate(bt models.BetType, halfPrice bool) decimal.Decimal {
	rate := r[bt]
	if halfPrice {
		return rate.Div(decimal.NewFromInt(2))
	}
	return rate
}

// Win is one paid leg of a winning ticket.
type Win struct {
	TicketID  int64           `json:"ticket_id"`
	Number    string          `json:"number"`
	BetType   models.BetType  `json:"bet_type"` // leg that paid, 3up for a straight leg
	Stake     decimal.Decimal `json:"stake"`
	Rate      decimal.Decimal `json:"rate"`
	HalfPrice bool            `json:"half_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// CheckTicket returns the winning legs of t against result. Every concrete
// number the ticket expands to is checked on its own. Half price only changes
// the rate; the stake recorded on the ticket is left as it is.
func CheckTicket(t models.Ticket, result *models.Result, halfPrices []models.HalfPriceEntry, rates Rates) []Win {
	if result == nil {
		return nil
	}
	toads := result.Result3Toad
	if len(toads) == 0 && result.Result3Up != "" {
		toads = ToadNumbers(result.Result3Up)
	}

	var wins []Win
	pay := func(number string, leg models.BetType, stake decimal.Decimal) {
		if !stake.IsPositive() {
			return
		}
		half := IsHalfPrice(number, t.BetType, halfPrices)
		rate := rates.Rate(leg, half)
		wins = append(wins, Win{
			TicketID:  t.ID,
			Number:    number,
			BetType:   leg,
			Stake:     stake,
			Rate:      rate,
			HalfPrice: half,
			Amount:    stake.Mul(rate),
		})
	}

	for _, n := range ExpandTicket(t) {
		switch t.BetType {
		case models.Bet2Up:
			if n == result.Result2Up {
				pay(n, models.Bet2Up, t.Price)
			}
		case models.Bet2Down:
			if n == result.Result2Down {
				pay(n, models.Bet2Down, t.Price)
			}
		case models.Bet3Up:
			if n == result.Result3Up {
				pay(n, models.Bet3Up, t.Price)
			}
		case models.Bet3Toad:
			if t.HasToadLeg() {
				if n == result.Result3Up {
					pay(n, models.Bet3Up, t.Price)
				}
				if contains(toads, n) {
					pay(n, models.Bet3Toad, t.PriceToad)
				}
			} else if contains(toads, n) {
				pay(n, models.Bet3Toad, t.Price)
			}
		case models.BetRunUp:
			if len(n) == 1 && strings.Contains(result.Result3Up, n) {
				pay(n, models.BetRunUp, t.Price)
			}
		case models.BetRunDown:
			if len(n) == 1 && strings.Contains(result.Result2Down, n) {
				pay(n, models.BetRunDown, t.Price)
			}
		}
	}
	return wins
}

// TotalReward sums the amounts of wins.
func TotalReward(wins []Win) decimal.Decimal {
	total := decimal.Zero
	for _, w := range wins {
		total = total.Add(w.Amount)
	}
	return total
}

// Commission is sales * percent / 100, not rounded.
func Commission(sales, percent decimal.Decimal) decimal.Decimal {
	return sales.Mul(percent).Div(hundred)
}

// ProfitLoss is sales minus rewards paid; negative means the house lost.
func ProfitLoss(sales, rewards decimal.Decimal) decimal.Decimal {
	return sales.Sub(rewards)
}

// ProfitLabel names the sign of a ProfitLoss value.
func ProfitLabel(pl decimal.Decimal) string {
	if pl.IsNegative() {
		return "loss"
	}
	return "profit"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
