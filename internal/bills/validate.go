// Package bills groups ticket entries into bills: validation, the pending
// entry list with its duplicate guard, and the edit flow for saved bills.
package bills

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"lotto-office/internal/models"
)

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid      = errors.New("invalid input")
	ErrPeriodClosed = errors.New("period is closed")
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

var notNegative = validation.By(func(value interface{}) error {
	if d, ok := value.(decimal.Decimal); ok && d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
})

var storedBetType = validation.By(func(value interface{}) error {
	bt, _ := value.(models.BetType)
	for _, known := range models.BetTypes {
		if bt == known {
			return nil
		}
	}
	return fmt.Errorf("unknown bet type %q", string(bt))
})

// DuplicateError is returned when a concrete number is already pending in the
// same bet type.
type DuplicateError struct {
	Number  string
	BetType models.BetType
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("number %s is already in the list for %s", e.Number, e.BetType)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// ValidateTicket checks the number format against the bet type and the stakes.
func ValidateTicket(t models.Ticket) error {
	digits := t.BetType.Digits()
	err := validation.ValidateStruct(&t,
		validation.Field(&t.BetType, validation.Required, storedBetType),
		validation.Field(&t.Number,
			validation.Required,
			validation.Match(digitsOnly).Error("must contain digits only"),
			validation.Length(digits, digits).Error(fmt.Sprintf("must be %d digits for %s", digits, t.BetType)),
		),
		validation.Field(&t.Price, notNegative),
		validation.Field(&t.PriceToad, notNegative),
	)
	if err != nil {
		return invalid(err)
	}
	if !t.Price.IsPositive() && !t.HasToadLeg() {
		return invalid(errors.New("price: must be greater than zero"))
	}
	return nil
}

// ValidateBill checks the buyer, the ticket count and every ticket.
func ValidateBill(b models.Bill) error {
	err := validation.ValidateStruct(&b,
		validation.Field(&b.BuyerName, validation.Required, validation.Length(1, 100)),
		validation.Field(&b.Tickets, validation.Required.Error("at least one ticket is required")),
	)
	if err != nil {
		return invalid(err)
	}
	for i, t := range b.Tickets {
		if err := ValidateTicket(t); err != nil {
			return fmt.Errorf("ticket %d: %w", i+1, err)
		}
	}
	return nil
}
