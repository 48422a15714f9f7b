package lotto

import "lotto-office/internal/models"

// IsHalfPrice reports whether number is on the period's half-price list for a
// compatible category. Categories are matched on the stored number length, not
// on LottoType, because older entries were saved without a precise type tag.
// A reversed number does not match.
func IsHalfPrice(number string, bt models.BetType, entries []models.HalfPriceEntry) bool {
	digits := bt.Digits()
	if digits < 2 {
		return false
	}
	for _, e := range entries {
		if len(e.Number) == digits && e.Number == number {
			return true
		}
	}
	return false
}

// MarkHalfPrice sets IsHalfPrice on every ticket whose entered number is on
// the list.
func MarkHalfPrice(tickets []models.Ticket, entries []models.HalfPriceEntry) {
	for i := range tickets {
		tickets[i].IsHalfPrice = IsHalfPrice(tickets[i].Number, tickets[i].BetType, entries)
	}
}

// HalfPriceCategory returns the coarse lotto_type stored with a half-price
// entry for a number of the given length.
func HalfPriceCategory(number string) string {
	switch len(number) {
	case 2:
		return "2digit"
	case 3:
		return "3digit"
	}
	return ""
}
