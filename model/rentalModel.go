package model

import "time"

type RentalStatus string

const (
	RentalPending  RentalStatus = "PENDING"
	RentalLasting  RentalStatus = "LASTING"
	RentalReturned RentalStatus = "RETURNED"
	RentalCanceled RentalStatus = "CANCELED"
)

// Active reports whether the status counts toward the one-rental-per-user limit.
func (s RentalStatus) Active() bool { return s == RentalPending || s == RentalLasting }

type Rental struct {
	ID                 int64        `json:"id"`
	UserID             int64        `json:"user_id"`
	CarID              int64        `json:"car_id"`
	RentalDate         time.Time    `json:"rental_date"`
	RequiredReturnDate time.Time    `json:"required_return_date"`
	ActualReturnDate   *time.Time   `json:"actual_return_date,omitempty"`
	Status             RentalStatus `json:"status"`
	Archived           bool         `json:"-"`
}

// RentalDays is the span the PAYMENT obligation is charged for.
func (r Rental) RentalDays() int64 { return DaysBetween(r.RentalDate, r.RequiredReturnDate) }

// OverdueDays is zero when returned on or before the required date.
func (r Rental) OverdueDays(returned time.Time) int64 {
	if d := DaysBetween(r.RequiredReturnDate, returned); d > 0 {
		return d
	}
	return 0
}
