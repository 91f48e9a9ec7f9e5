package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"carsharing/model"
)

const separator = "***"

var errMissingPayload = errors.New("event payload missing")

type formatFn func(Event) (string, error)

var formatters = map[EventKind]formatFn{
	CarCreated: withCar(func(c *model.Car) string {
		return fmt.Sprintf("A new car is created.\n\nId: %d,\nBrand: %s,\nModel: %s,\nType: %s,\nInventory: %d,\nDaily fee: %s.",
			c.ID, c.Brand, c.Model, c.Type, c.Inventory, c.DailyFee.StringFixed(2))
	}),
	CarUpdated: withCar(func(c *model.Car) string {
		return fmt.Sprintf("Car with id %d is updated\n\nNow this car is like:\nBrand: %s,\nModel: %s,\nType: %s,\nInventory: %d,\nDaily fee: %s.",
			c.ID, c.Brand, c.Model, c.Type, c.Inventory, c.DailyFee.StringFixed(2))
	}),
	CarDeleted: withCar(func(c *model.Car) string {
		return fmt.Sprintf("The car with id %d is deleted.", c.ID)
	}),
	RentalCreated: withRental(func(r *model.Rental) string {
		return fmt.Sprintf("A new rent is created.\nCar id: %d,\nUser id: %d\nRental date: %s,\nExpected return date: %s.",
			r.CarID, r.UserID, day(r.RentalDate), day(r.RequiredReturnDate))
	}),
	RentalReturned: withRental(func(r *model.Rental) string {
		actual := "-"
		if r.ActualReturnDate != nil {
			actual = day(*r.ActualReturnDate)
		}
		return fmt.Sprintf("Car is returned.\nRental id: %d,\nRequired return date: %s,\nActual return date: %s.",
			r.ID, day(r.RequiredReturnDate), actual)
	}),
	RentalOverdue: func(ev Event) (string, error) {
		if ev.Rental == nil {
			return "No rentals overdue today!", nil
		}
		r := ev.Rental
		return fmt.Sprintf("The following rental is overdue.\n\nRental id: %d,\nUser id: %d,\nCar id: %d,\nRental date: %s,\nRequired return date: %s.",
			r.ID, r.UserID, r.CarID, day(r.RentalDate), day(r.RequiredReturnDate)), nil
	},
	PaymentSucceeded: func(ev Event) (string, error) {
		p := ev.Payment
		if p == nil {
			return "", errMissingPayload
		}
		return fmt.Sprintf("Payment is paid.\n\nPayment id: %d,\nRental id: %d,\nUser id: %d,\nType: %s\nPaid amount: %s.",
			p.ID, p.RentalID, p.UserID, p.Type, p.AmountToPay.StringFixed(2)), nil
	},
	RoleUpdated: func(ev Event) (string, error) {
		u := ev.User
		if u == nil {
			return "", errMissingPayload
		}
		return fmt.Sprintf("User roles were updated to [%s] , user id is %d", u.Role, u.ID), nil
	},
}

// Format renders ev framed by separator lines.
func Format(ev Event) (string, error) {
	fn, ok := formatters[ev.Kind]
	if !ok {
		return "", fmt.Errorf("no formatter for %q", ev.Kind)
	}
	body, err := fn(ev)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ev.Kind, err)
	}
	return strings.Join([]string{separator, body, separator}, "\n"), nil
}

func withCar(fn func(*model.Car) string) formatFn {
	return func(ev Event) (string, error) {
		if ev.Car == nil {
			return "", errMissingPayload
		}
		return fn(ev.Car), nil
	}
}

func withRental(fn func(*model.Rental) string) formatFn {
	return func(ev Event) (string, error) {
		if ev.Rental == nil {
			return "", errMissingPayload
		}
		return fn(ev.Rental), nil
	}
}

func day(t time.Time) string { return t.Format(time.DateOnly) }
