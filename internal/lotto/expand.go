// Package lotto holds the betting rules: number expansion, half-price lookup,
// stake totals and reward calculation. Every function here is pure.
package lotto

import (
	"sort"

	"lotto-office/internal/models"
)

// Permutations returns the distinct orderings of the characters of number,
// sorted lexicographically. "123" gives 6, "112" gives 3, "111" gives 1.
func Permutations(number string) []string {
	if number == "" {
		return []string{number}
	}
	chars := []byte(number)
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })

	out := []string{string(chars)}
	for nextPermutation(chars) {
		out = append(out, string(chars))
	}
	return out
}

// nextPermutation rearranges b into the next lexicographic ordering and
// reports false once b is the last one. Repeated characters never produce
// the same ordering twice.
func nextPermutation(b []byte) bool {
	i := len(b) - 2
	for i >= 0 && b[i] >= b[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(b) - 1
	for b[j] <= b[i] {
		j--
	}
	b[i], b[j] = b[j], b[i]
	for l, r := i+1, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return true
}

// ToadNumbers lists every number that wins a toad bet for the given 3-digit
// result. Anything that is not 3 characters long comes back unchanged.
func ToadNumbers(result3up string) []string {
	if len(result3up) != 3 {
		return []string{result3up}
	}
	return Permutations(result3up)
}

// Reverse returns number with its characters in reverse order.
func Reverse(number string) string {
	b := []byte(number)
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
	return string(b)
}

// Expand returns the concrete numbers a ticket entry covers. Without the
// reverse flag, for toad bets, or when the number length does not fit the bet
// type, the result is just the number itself.
func Expand(number string, bt models.BetType, reverse bool) []string {
	if !reverse || !bt.Reversible() || len(number) != bt.Digits() {
		return []string{number}
	}

	switch bt.Digits() {
	case 2:
		rev := Reverse(number)
		if rev == number {
			return []string{number}
		}
		pair := []string{number, rev}
		sort.Strings(pair)
		return pair
	case 3:
		return Permutations(number)
	}
	return []string{number}
}

// ExpandTicket is Expand applied to a stored ticket.
func ExpandTicket(t models.Ticket) []string {
	return Expand(t.Number, t.BetType, t.Reverse)
}
