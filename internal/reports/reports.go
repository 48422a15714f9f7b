// Package reports aggregates the bills of a period into sales, reward,
// commission and number-frequency figures.
package reports

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// Winner is a bill with at least one winning leg.
type Winner struct {
	BillID    int64           `json:"bill_id"`
	BuyerName string          `json:"buyer_name"`
	AgentID   int64           `json:"agent_id"`
	Wins      []lotto.Win     `json:"wins"`
	Reward    decimal.Decimal `json:"reward"`
}

// PeriodSummary is the admin overview of one period.
type PeriodSummary struct {
	PeriodID   int64           `json:"period_id"`
	BillCount  int             `json:"bill_count"`
	Sales      decimal.Decimal `json:"sales"`
	Rewards    decimal.Decimal `json:"rewards"`
	ProfitLoss decimal.Decimal `json:"profit_loss"`
	Label      string          `json:"label"`
	Winners    []Winner        `json:"winners"`
}

// Summarize totals sales over bills and, when the result is known, the
// rewards owed.
func Summarize(periodID int64, bills []models.Bill, result *models.Result, halfPrices []models.HalfPriceEntry, rates lotto.Rates) PeriodSummary {
	s := PeriodSummary{
		PeriodID:  periodID,
		BillCount: len(bills),
		Sales:     decimal.Zero,
		Rewards:   decimal.Zero,
		Winners:   []Winner{},
	}
	for _, b := range bills {
		s.Sales = s.Sales.Add(billSales(b))

		var wins []lotto.Win
		for _, t := range b.Tickets {
			wins = append(wins, lotto.CheckTicket(t, result, halfPrices, rates)...)
		}
		if len(wins) == 0 {
			continue
		}
		reward := lotto.TotalReward(wins)
		s.Rewards = s.Rewards.Add(reward)
		s.Winners = append(s.Winners, Winner{
			BillID:    b.ID,
			BuyerName: b.BuyerName,
			AgentID:   b.AgentID,
			Wins:      wins,
			Reward:    reward,
		})
	}
	s.ProfitLoss = lotto.ProfitLoss(s.Sales, s.Rewards)
	s.Label = lotto.ProfitLabel(s.ProfitLoss)
	return s
}

// billSales prefers the stored total and falls back to the tickets.
func billSales(b models.Bill) decimal.Decimal {
	if b.TotalAmount.IsPositive() {
		return b.TotalAmount
	}
	return lotto.BillTotal(b.Tickets)
}

// AgentCommission is one agent's sales and income for a period.
type AgentCommission struct {
	AgentID       int64           `json:"agent_id"`
	AgentName     string          `json:"agent_name"`
	Sales         decimal.Decimal `json:"sales"`
	IncomePercent decimal.Decimal `json:"income_percent"`
	Commission    decimal.Decimal `json:"commission"`
}

// AgentCommissions computes commission per agent. Agents without sales are
// listed with zero so the admin sees everybody.
func AgentCommissions(bills []models.Bill, agents []models.User) []AgentCommission {
	sales := map[int64]decimal.Decimal{}
	for _, b := range bills {
		sales[b.AgentID] = sales[b.AgentID].Add(billSales(b))
	}

	out := make([]AgentCommission, 0, len(agents))
	for _, a := range agents {
		s, ok := sales[a.ID]
		if !ok {
			s = decimal.Zero
		}
		out = append(out, AgentCommission{
			AgentID:       a.ID,
			AgentName:     a.Name,
			Sales:         s,
			IncomePercent: a.IncomePercent,
			Commission:    lotto.Commission(s, a.IncomePercent),
		})
	}
	return out
}

// FrequencyRow counts how often a concrete number was bought in a bet type.
type FrequencyRow struct {
	Number     string          `json:"number"`
	BetType    models.BetType  `json:"bet_type"`
	Frequency  int             `json:"frequency"`
	TotalStake decimal.Decimal `json:"total_stake"`
}

// Frequency lists every distinct (number, bet type) over the expanded
// tickets of bills, highest stake first.
func Frequency(bills []models.Bill) []FrequencyRow {
	type key struct {
		number string
		bt     models.BetType
	}
	index := map[key]int{}
	var rows []FrequencyRow

	for _, b := range bills {
		for _, t := range b.Tickets {
			stake := lotto.EffectivePrice(t)
			for _, n := range lotto.ExpandTicket(t) {
				k := key{n, t.BetType}
				i, ok := index[k]
				if !ok {
					i = len(rows)
					index[k] = i
					rows = append(rows, FrequencyRow{Number: n, BetType: t.BetType, TotalStake: decimal.Zero})
				}
				rows[i].Frequency++
				rows[i].TotalStake = rows[i].TotalStake.Add(stake)
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].TotalStake.Cmp(rows[j].TotalStake); c != 0 {
			return c > 0
		}
		if rows[i].Number != rows[j].Number {
			return rows[i].Number < rows[j].Number
		}
		return rows[i].BetType < rows[j].BetType
	})
	return rows
}

// WriteFrequencyCSV writes rows with a header line.
func WriteFrequencyCSV(w io.Writer, rows []FrequencyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"number", "bet_type", "frequency", "total_stake"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Number, r.BetType.String(), strconv.Itoa(r.Frequency), r.TotalStake.StringFixed(2)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
