// Package notify formats engine events and hands them to a delivery
// channel. Delivery never blocks or fails the operation that emitted it.
package notify

import (
	"context"

	"carsharing/model"
)

type EventKind string

const (
	CarCreated       EventKind = "car.created"
	CarUpdated       EventKind = "car.updated"
	CarDeleted       EventKind = "car.deleted"
	RentalCreated    EventKind = "rental.created"
	RentalReturned   EventKind = "rental.returned"
	RentalOverdue    EventKind = "rental.overdue"
	PaymentSucceeded EventKind = "payment.succeeded"
	RoleUpdated      EventKind = "role.updated"
)

// Event carries the entity its Kind is about. ChatID 0 targets the
// sender's default chat.
type Event struct {
	Kind    EventKind
	ChatID  int64
	Car     *model.Car
	Rental  *model.Rental
	Payment *model.Payment
	User    *model.User
}

type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// Discard drops every event.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, Event) {}
