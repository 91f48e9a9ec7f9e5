package rental

import (
	"context"
	"time"

	"carsharing/model"
	rentalrepo "carsharing/repository/rental"
	"carsharing/service/notify"
)

// Reminder tells the admin chat about rentals past their return date.
type Reminder interface {
	RemindOverdue(ctx context.Context) (int, error)
}

type reminder struct {
	rentals rentalrepo.Repo
	n       notify.Notifier
	now     func() time.Time
}

func NewReminder(rentals rentalrepo.Repo, n notify.Notifier) Reminder {
	return &reminder{rentals: rentals, n: n, now: time.Now}
}

// RemindOverdue sends one notice per overdue rental, or a single
// all-clear notice when there are none.
func (m *reminder) RemindOverdue(ctx context.Context) (int, error) {
	overdue, err := m.rentals.ListOverdue(ctx, model.DateOf(m.now()))
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		m.n.Notify(ctx, notify.Event{Kind: notify.RentalOverdue})
		return 0, nil
	}
	for i := range overdue {
		m.n.Notify(ctx, notify.Event{Kind: notify.RentalOverdue, Rental: &overdue[i]})
	}
	return len(overdue), nil
}
