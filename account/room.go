package account

import (
	"fmt"

	"github.com/etnz/endgame"
)

// TfsaRoom is the amount one may contribute to a TFSA.
//
// The main room is topped up every year by a fixed amount. Each withdrawal
// creates a separate bucket that only counts from the following year on.
type TfsaRoom struct {
	main    endgame.Money
	yearly  endgame.Money
	buckets []bucket
}

type bucket struct {
	year   int
	amount endgame.Money
}

// NewTfsaRoom returns a ledger with the initial room and the yearly increase.
func NewTfsaRoom(initial, yearly endgame.Money) *TfsaRoom {
	return &TfsaRoom{main: initial, yearly: yearly}
}

// YearlyIncrease adds the yearly amount to the main room. It is called on Jan 1.
func (r *TfsaRoom) YearlyIncrease() { r.main = r.main.Add(r.yearly) }

// RoomFor returns the room available for contributions in year.
func (r *TfsaRoom) RoomFor(year int) endgame.Money {
	room := r.main
	for _, b := range r.buckets {
		if year > b.year {
			room = room.Add(b.amount)
		}
	}
	return room
}

// ReduceFromContribution consumes room for a contribution made in year.
// Withdrawal buckets of earlier years are drained first, in the order they
// were made, then the main room. It fails, with no effect, if amount exceeds
// RoomFor(year) or is negative.
func (r *TfsaRoom) ReduceFromContribution(amount endgame.Money, year int) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: negative TFSA contribution %s", endgame.ErrInvalid, amount)
	}
	if room := r.RoomFor(year); amount.GreaterThan(room) {
		return fmt.Errorf("%w: TFSA contribution %s exceeds room %s", endgame.ErrRoomExceeded, amount, room)
	}
	remainder := amount
	for i := range r.buckets {
		b := &r.buckets[i]
		if year <= b.year {
			continue
		}
		if remainder.LessThanOrEqual(b.amount) {
			b.amount = b.amount.Sub(remainder)
			remainder = endgame.Zero(amount.Currency())
			break
		}
		remainder = remainder.Sub(b.amount)
		b.amount = endgame.Zero(amount.Currency())
	}
	kept := r.buckets[:0]
	for _, b := range r.buckets {
		if !b.amount.IsZero() {
			kept = append(kept, b)
		}
	}
	r.buckets = kept
	r.main = r.main.Sub(remainder)
	return nil
}

// IncreaseFromWithdrawal records a withdrawal made in year.
func (r *TfsaRoom) IncreaseFromWithdrawal(amount endgame.Money, year int) {
	r.buckets = append(r.buckets, bucket{year: year, amount: amount})
}

// Main returns the main room, without any withdrawal bucket.
func (r *TfsaRoom) Main() endgame.Money { return r.main }

func (r *TfsaRoom) String() string {
	return fmt.Sprintf("TFSA room %s past withdrawals: %v", r.main, r.buckets)
}

func (b bucket) String() string { return fmt.Sprintf("%d: %s", b.year, b.amount) }
