// Package receipt groups a bill's tickets into the rows shown on a receipt.
package receipt

import (
	"sort"

	"github.com/shopspring/decimal"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// Section keys, in display order.
const (
	SectionThreeDigit = "3digit"  // straight × toad
	SectionTwoDigit   = "2updown" // numbers bought both up and down
	SectionTwoUp      = "2up"
	SectionTwoDown    = "2down"
	SectionRunUp      = "runup"
	SectionRunDown    = "rundown"
)

var sectionTitles = map[string]string{
	SectionThreeDigit: "3 ตัว (ตรง×โต๊ด)",
	SectionTwoDigit:   "2 ตัว (บน×ล่าง)",
	SectionTwoUp:      "2 ตัวบน",
	SectionTwoDown:    "2 ตัวล่าง",
	SectionRunUp:      "วิ่งบน",
	SectionRunDown:    "วิ่งล่าง",
}

// Row is one number on the receipt. Combined rows carry two stakes: straight
// and toad in the 3-digit section, up and down in the 2-digit section.
type Row struct {
	Number    string          `json:"number"`
	First     decimal.Decimal `json:"first"`
	Second    decimal.Decimal `json:"second"`
	HasFirst  bool            `json:"has_first"`
	HasSecond bool            `json:"has_second"`
}

// Amount is what the row costs.
func (r Row) Amount() decimal.Decimal {
	return r.First.Add(r.Second)
}

// Label renders the stake column: "X×Y" when both sides are present.
func (r Row) Label() string {
	switch {
	case r.HasFirst && r.HasSecond:
		return r.First.String() + "×" + r.Second.String()
	case r.HasSecond:
		return r.Second.String()
	}
	return r.First.String()
}

type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Receipt is the grouped view of a bill.
type Receipt struct {
	BillID     int64           `json:"bill_id"`
	Ref        string          `json:"ref"`
	BuyerName  string          `json:"buyer_name"`
	PeriodName string          `json:"period_name"`
	Sections   []Section       `json:"sections"`
	Total      decimal.Decimal `json:"total"`
}

// RowsTotal recomputes the total from the grouped rows.
func (r Receipt) RowsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range r.Sections {
		for _, row := range s.Rows {
			total = total.Add(row.Amount())
		}
	}
	return total
}

type bucket map[string]decimal.Decimal

func (b bucket) add(number string, v decimal.Decimal) {
	b[number] = b[number].Add(v)
}

// Group expands every ticket and arranges the numbers into sections: the
// combined 3-digit section first, then numbers bought both 2up and 2down,
// then the plain 2up, 2down, run-up and run-down sections. Rows are sorted by
// number and empty sections are left out.
func Group(b models.Bill) Receipt {
	var (
		straight = bucket{}
		toad     = bucket{}
		up       = bucket{}
		down     = bucket{}
		runUp    = bucket{}
		runDown  = bucket{}
	)

	for _, t := range b.Tickets {
		for _, n := range lotto.ExpandTicket(t) {
			switch t.BetType {
			case models.Bet2Up:
				up.add(n, t.Price)
			case models.Bet2Down:
				down.add(n, t.Price)
			case models.Bet3Up:
				straight.add(n, t.Price)
			case models.Bet3Toad:
				if t.HasToadLeg() {
					straight.add(n, t.Price)
					toad.add(n, t.PriceToad)
				} else {
					toad.add(n, t.Price)
				}
			case models.BetRunUp:
				runUp.add(n, t.Price)
			case models.BetRunDown:
				runDown.add(n, t.Price)
			}
		}
	}

	r := Receipt{
		BillID:     b.ID,
		Ref:        b.Ref,
		BuyerName:  b.BuyerName,
		PeriodName: b.PeriodName,
	}
	r.addSection(SectionThreeDigit, pairRows(straight, toad, false))
	r.addSection(SectionTwoDigit, pairRows(up, down, true))
	r.addSection(SectionTwoUp, singleRows(up))
	r.addSection(SectionTwoDown, singleRows(down))
	r.addSection(SectionRunUp, singleRows(runUp))
	r.addSection(SectionRunDown, singleRows(runDown))

	if b.TotalAmount.IsPositive() {
		r.Total = b.TotalAmount
	} else {
		r.Total = r.RowsTotal()
	}
	return r
}

func (r *Receipt) addSection(key string, rows []Row) {
	if len(rows) == 0 {
		return
	}
	r.Sections = append(r.Sections, Section{Key: key, Title: sectionTitles[key], Rows: rows})
}

// pairRows builds combined rows. With both set only numbers present on both
// sides are taken, and they are removed from a and b.
func pairRows(a, b bucket, both bool) []Row {
	keys := map[string]struct{}{}
	for n := range a {
		if _, ok := b[n]; ok || !both {
			keys[n] = struct{}{}
		}
	}
	if !both {
		for n := range b {
			keys[n] = struct{}{}
		}
	}

	rows := make([]Row, 0, len(keys))
	for _, n := range sortedKeys(keys) {
		first, hasFirst := a[n]
		second, hasSecond := b[n]
		rows = append(rows, Row{Number: n, First: first, Second: second, HasFirst: hasFirst, HasSecond: hasSecond})
		if both {
			delete(a, n)
			delete(b, n)
		}
	}
	return rows
}

func singleRows(b bucket) []Row {
	keys := make(map[string]struct{}, len(b))
	for n := range b {
		keys[n] = struct{}{}
	}
	rows := make([]Row, 0, len(b))
	for _, n := range sortedKeys(keys) {
		rows = append(rows, Row{Number: n, First: b[n], HasFirst: true})
	}
	return rows
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
