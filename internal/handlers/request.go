package handlers

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"lotto-office/internal/bills"
)

var digits = regexp.MustCompile(`^[0-9]+$`)

type CreateBillRequest struct {
	BuyerName string        `json:"buyer_name"`
	Entries   []bills.Entry `json:"entries"`
}

func (req *CreateBillRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BuyerName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Entries, validation.Required.Error("at least one ticket is required")),
	)
}

// TicketEdit keeps a saved ticket, possibly with new stakes.
type TicketEdit struct {
	ID        int64           `json:"id"`
	Price     decimal.Decimal `json:"price"`
	PriceToad decimal.Decimal `json:"price_toad"`
}

// UpdateBillRequest lists the saved tickets to keep and the entries to add.
// Saved tickets that are not listed are removed.
type UpdateBillRequest struct {
	BuyerName string        `json:"buyer_name"`
	Tickets   []TicketEdit  `json:"tickets"`
	Entries   []bills.Entry `json:"entries"`
}

func (req *UpdateBillRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BuyerName, validation.Length(0, 100)),
	)
}

type CreatePeriodRequest struct {
	Name string `json:"period_name"`
	Date string `json:"period_date" format:"YYYY-MM-DD"`
}

func (req *CreatePeriodRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02")),
	)
}

// HalfPriceRequest flags a number; SixReverse also flags every permutation
// of a 3-digit number, Reverse the reversed 2-digit number.
type HalfPriceRequest struct {
	PeriodID   int64  `json:"period_id"`
	Number     string `json:"number"`
	SixReverse bool   `json:"six_reverse"`
	Reverse    bool   `json:"reverse"`
}

func (req *HalfPriceRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Number, validation.Required, validation.Length(2, 3), validation.Match(digits)),
	)
}

type ResultRequest struct {
	PeriodID    int64  `json:"period_id"`
	Result3Up   string `json:"result_3up"`
	Result2Up   string `json:"result_2up"`
	Result2Down string `json:"result_2down"`
	ResultDate  string `json:"result_date" format:"YYYY-MM-DD"`
}

func (req *ResultRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.PeriodID, validation.Required, validation.Min(int64(1))),
		validation.Field(&req.Result3Up, validation.Required, validation.Length(3, 3), validation.Match(digits)),
		validation.Field(&req.Result2Up, validation.Length(2, 2), validation.Match(digits)),
		validation.Field(&req.Result2Down, validation.Required, validation.Length(2, 2), validation.Match(digits)),
		validation.Field(&req.ResultDate, validation.Date("2006-01-02")),
	)
}

type CreateAgentRequest struct {
	TelegramID    *int64          `json:"telegram_id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Role          string          `json:"role"`
	IncomePercent decimal.Decimal `json:"income_percent"`
}

func (req *CreateAgentRequest) Validate() error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Role, validation.In("admin", "agent")),
		validation.Field(&req.IncomePercent, validation.By(func(value interface{}) error {
			p, _ := value.(decimal.Decimal)
			if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
				return errors.New("must be between 0 and 100")
			}
			return nil
		})),
	)
}
