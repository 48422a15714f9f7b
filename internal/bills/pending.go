package bills

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"lotto-office/internal/lotto"
	"lotto-office/internal/models"
)

// Entry is one selection from the entry form. BetType may be any value
// accepted by models.ParseBetType, including the 2updown selection and the
// legacy 3straight_toad name.
type Entry struct {
	Number    string          `json:"number"`
	BetType   string          `json:"bet_type"`
	Price     decimal.Decimal `json:"price"`
	PriceDown decimal.Decimal `json:"price_down"` // 2updown: stake of the 2down ticket, defaults to Price
	PriceToad decimal.Decimal `json:"price_toad"`
	Reverse   bool            `json:"reverse"`
}

// Tickets turns the entry into the tickets that will be stored. A 2updown
// selection becomes two independent tickets sharing the number.
func (e Entry) Tickets() ([]models.Ticket, error) {
	bt, combo, err := models.ParseBetType(e.BetType)
	if err != nil {
		return nil, invalid(err)
	}
	number := strings.TrimSpace(e.Number)

	if bt == models.Bet2UpDown {
		down := e.PriceDown
		if down.IsZero() {
			down = e.Price
		}
		return []models.Ticket{
			{Number: number, BetType: models.Bet2Up, Price: e.Price, Reverse: e.Reverse, IsNew: true},
			{Number: number, BetType: models.Bet2Down, Price: down, Reverse: e.Reverse, IsNew: true},
		}, nil
	}

	t := models.Ticket{
		Number:  number,
		BetType: models.ResolveCombo(bt, combo, e.PriceToad),
		Price:   e.Price,
		Reverse: e.Reverse && !combo,
		IsNew:   true,
	}
	if t.BetType == models.Bet3Toad {
		t.PriceToad = e.PriceToad
		t.Reverse = false
	}
	return []models.Ticket{t}, nil
}

// Pending is the list of tickets being entered for one bill, either a new
// bill or a saved bill loaded for editing.
type Pending struct {
	tickets []models.Ticket
	removed []int64
}

func NewPending() *Pending {
	return &Pending{}
}

// LoadForEdit starts an edit of a saved bill. Its tickets are marked as
// existing so Changes can tell them apart from tickets added afterwards.
func LoadForEdit(b models.Bill) *Pending {
	p := &Pending{tickets: make([]models.Ticket, len(b.Tickets))}
	copy(p.tickets, b.Tickets)
	for i := range p.tickets {
		p.tickets[i].IsNew = false
	}
	return p
}

// Add appends a ticket after validating it. A ticket whose concrete numbers
// overlap a pending ticket of the same bet type is rejected with a
// *DuplicateError and the list is left as it was.
func (p *Pending) Add(t models.Ticket) error {
	if err := ValidateTicket(t); err != nil {
		return err
	}
	if err := p.checkDuplicate(t, nil); err != nil {
		return err
	}
	t.IsNew = true
	t.ID = 0
	p.tickets = append(p.tickets, t)
	return nil
}

// AddEntry adds every ticket produced by e. Either all of them are added or
// none is.
func (p *Pending) AddEntry(e Entry) error {
	tickets, err := e.Tickets()
	if err != nil {
		return err
	}
	for i, t := range tickets {
		if err := ValidateTicket(t); err != nil {
			return err
		}
		if err := p.checkDuplicate(t, tickets[:i]); err != nil {
			return err
		}
	}
	for _, t := range tickets {
		t.IsNew = true
		p.tickets = append(p.tickets, t)
	}
	return nil
}

func (p *Pending) checkDuplicate(t models.Ticket, batch []models.Ticket) error {
	numbers := lotto.ExpandTicket(t)
	for _, list := range [][]models.Ticket{p.tickets, batch} {
		for _, existing := range list {
			if existing.BetType != t.BetType {
				continue
			}
			for _, n := range lotto.ExpandTicket(existing) {
				for _, m := range numbers {
					if n == m {
						return &DuplicateError{Number: n, BetType: t.BetType}
					}
				}
			}
		}
	}
	return nil
}

// Remove drops the ticket at index i. Saved tickets are remembered so the
// update can delete them.
func (p *Pending) Remove(i int) error {
	if i < 0 || i >= len(p.tickets) {
		return fmt.Errorf("%w: no ticket at position %d", ErrInvalid, i+1)
	}
	if t := p.tickets[i]; !t.IsNew && t.ID > 0 {
		p.removed = append(p.removed, t.ID)
	}
	p.tickets = append(p.tickets[:i], p.tickets[i+1:]...)
	return nil
}

// SetPrice edits the stakes of the ticket at index i.
func (p *Pending) SetPrice(i int, price, priceToad decimal.Decimal) error {
	if i < 0 || i >= len(p.tickets) {
		return fmt.Errorf("%w: no ticket at position %d", ErrInvalid, i+1)
	}
	t := p.tickets[i]
	t.Price = price
	t.PriceToad = priceToad
	if err := ValidateTicket(t); err != nil {
		return err
	}
	p.tickets[i] = t
	return nil
}

// Tickets returns a copy of the pending tickets in entry order.
func (p *Pending) Tickets() []models.Ticket {
	out := make([]models.Ticket, len(p.tickets))
	copy(out, p.tickets)
	return out
}

// IndexOf returns the position of the saved ticket with the given ID, or -1.
func (p *Pending) IndexOf(ticketID int64) int {
	for i, t := range p.tickets {
		if t.ID == ticketID && !t.IsNew {
			return i
		}
	}
	return -1
}

func (p *Pending) Len() int {
	return len(p.tickets)
}

// Total is the amount the buyer pays for the pending tickets.
func (p *Pending) Total() decimal.Decimal {
	return lotto.BillTotal(p.tickets)
}

// Changes is what an update has to write for an edited bill.
type Changes struct {
	Kept    []models.Ticket `json:"kept"`
	Added   []models.Ticket `json:"added"`
	Removed []int64         `json:"removed"`
}

// Changes splits the pending list into saved tickets to keep (with their
// possibly edited stakes), new tickets and removed ticket IDs.
func (p *Pending) Changes() Changes {
	var c Changes
	for _, t := range p.tickets {
		if t.IsNew || t.ID == 0 {
			c.Added = append(c.Added, t)
		} else {
			c.Kept = append(c.Kept, t)
		}
	}
	c.Removed = append(c.Removed, p.removed...)
	return c
}
