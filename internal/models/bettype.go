package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BetType is the canonical bet category carried on a stored ticket.
type BetType string

const (
	Bet2Up     BetType = "2up"
	Bet2Down   BetType = "2down"
	Bet3Up     BetType = "3up"
	Bet3Toad   BetType = "3toad"
	BetRunUp   BetType = "runup"
	BetRunDown BetType = "rundown"

	// Bet2UpDown is an input selection only; it is split into 2up and 2down
	// before anything is stored.
	Bet2UpDown BetType = "2updown"
)

// legacy3StraightToad is the old name of a 3toad ticket with a straight leg.
const legacy3StraightToad = "3straight_toad"

var ErrUnknownBetType = errors.New("unknown bet type")

// BetTypes lists the stored bet types in display order.
var BetTypes = []BetType{Bet2Up, Bet2Down, Bet3Up, Bet3Toad, BetRunUp, BetRunDown}

// ParseBetType maps a raw lotto_type value to its canonical BetType. Combo is
// true when the raw value was the legacy straight+toad alias.
func ParseBetType(raw string) (bt BetType, combo bool, err error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case legacy3StraightToad, "3straighttoad":
		return Bet3Toad, true, nil
	case "2top":
		return Bet2Up, false, nil
	case "2bottom":
		return Bet2Down, false, nil
	case "3top", "3straight":
		return Bet3Up, false, nil
	}

	switch bt := BetType(s); bt {
	case Bet2Up, Bet2Down, Bet3Up, Bet3Toad, BetRunUp, BetRunDown, Bet2UpDown:
		return bt, false, nil
	}
	return "", false, fmt.Errorf("%w: %q", ErrUnknownBetType, raw)
}

// ResolveCombo settles the stored type of a ticket that arrived under the
// legacy straight+toad name. With a toad stake it is a 3toad ticket whose
// Price is the straight leg. Without one only the straight leg is left,
// which is a plain 3up bet.
func ResolveCombo(bt BetType, combo bool, priceToad decimal.Decimal) BetType {
	if combo && !priceToad.IsPositive() {
		return Bet3Up
	}
	return bt
}

// Digits returns the required number length for the bet type, 0 if unknown.
func (b BetType) Digits() int {
	switch b {
	case BetRunUp, BetRunDown:
		return 1
	case Bet2Up, Bet2Down, Bet2UpDown:
		return 2
	case Bet3Up, Bet3Toad:
		return 3
	}
	return 0
}

// Reversible reports whether the reverse flag expands the number.
// Toad numbers are unordered already.
func (b BetType) Reversible() bool {
	return b == Bet2Up || b == Bet2Down || b == Bet3Up
}

func (b BetType) String() string {
	return string(b)
}
