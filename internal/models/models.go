package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// Period statuses
const (
	PeriodOpen   = "open"
	PeriodClosed = "closed"
)

// User represents an admin or a sales agent
type User struct {
	ID            int64           `json:"id"`
	TelegramID    *int64          `json:"telegram_id"` // Pointer allowing null
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Role          string          `json:"role"` // 'admin', 'agent'
	IncomePercent decimal.Decimal `json:"income_percent"`
}

// Period represents one betting round (งวด)
type Period struct {
	ID        int64     `json:"id"`
	Name      string    `json:"period_name"`
	Date      time.Time `json:"period_date"`
	Status    string    `json:"status"` // 'open', 'closed'
	IsCurrent bool      `json:"is_current"`
}

// IsOpen reports whether bills may still be created or edited in the period.
func (p Period) IsOpen() bool {
	return p.Status == PeriodOpen
}

// HalfPriceEntry flags a number that pays at half rate for a period
type HalfPriceEntry struct {
	ID        int64  `json:"id"`
	PeriodID  int64  `json:"period_id"`
	LottoType string `json:"lotto_type"` // coarse category, may be empty on old rows
	Number    string `json:"number"`
}

// Result holds the winning numbers of a period
type Result struct {
	ID          int64     `json:"id"`
	PeriodID    int64     `json:"period_id"`
	Result2Up   string    `json:"result_2up"`
	Result2Down string    `json:"result_2down"`
	Result3Up   string    `json:"result_3up"`
	Result3Toad []string  `json:"result_3toad"` // derived from Result3Up
	ResultDate  time.Time `json:"result_date"`
}

// Ticket represents one number entry within a bill
type Ticket struct {
	ID        int64           `json:"id,omitempty"`
	BillID    int64           `json:"bill_id,omitempty"`
	Number    string          `json:"number"`
	BetType   BetType         `json:"bet_type"`
	Price     decimal.Decimal `json:"price"`
	PriceToad decimal.Decimal `json:"price_toad"`
	Reverse   bool            `json:"reverse"`

	// Derived, never set by the client
	IsHalfPrice bool `json:"is_half_price"`
	// Edit flow marker: false for rows loaded from an existing bill
	IsNew bool `json:"is_new"`
}

// HasToadLeg reports whether the ticket carries a separate toad stake.
func (t Ticket) HasToadLeg() bool {
	return t.BetType == Bet3Toad && t.PriceToad.IsPositive()
}

// Bill represents one buyer's purchase
type Bill struct {
	ID          int64           `json:"id"`
	Ref         string          `json:"ref"`
	AgentID     int64           `json:"agent_id"`
	BuyerName   string          `json:"buyer_name"`
	PeriodID    int64           `json:"period_id"`
	PeriodName  string          `json:"period_name"`
	Tickets     []Ticket        `json:"tickets"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`

	// Virtual fields (calculated via joins)
	AgentName string `json:"agent_name,omitempty"`
}
