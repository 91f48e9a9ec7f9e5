package rental_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"carsharing/model"
	"carsharing/service/errs"
	"carsharing/service/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreate_ReservesAndOpensPending(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 2, "10.00")

	v, err := e.rentals.Create(ctx, 1, car.ID, 3)
	require.NoError(t, err)
	require.Equal(t, model.RentalPending, v.Status)
	require.Equal(t, e.today, v.RentalDate)
	require.Equal(t, e.today.AddDate(0, 0, 3), v.RequiredReturnDate)
	require.Equal(t, "Your rental is not active yet. Pay for that first.", v.ReturnStatus)
	require.Equal(t, 1, e.inventoryOf(t, car.ID))
	// the creation notice waits for payment
	require.Empty(t, e.events.kinds())
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 5, "10.00")
	empty := e.car(t, 0, "10.00")

	_, err := e.rentals.Create(ctx, 1, car.ID, -1)
	require.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = e.rentals.Create(ctx, 1, 404, 1)
	require.ErrorIs(t, err, errs.ErrCarNotFound)

	_, err = e.rentals.Create(ctx, 1, empty.ID, 1)
	require.ErrorIs(t, err, errs.ErrCarUnavailable)

	_, err = e.rentals.Create(ctx, 1, car.ID, 1)
	require.NoError(t, err)
	_, err = e.rentals.Create(ctx, 1, car.ID, 1)
	require.ErrorIs(t, err, errs.ErrConflictingRental)

	require.Equal(t, 4, e.inventoryOf(t, car.ID))
}

// Scenario A: two users race for the last unit.
func TestCreate_LastUnitRace(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 1, "10.00")

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = e.rentals.Create(ctx, int64(100+i), car.ID, 2)
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, errs.ErrCarUnavailable):
			unavailable++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, unavailable)
	require.Equal(t, 0, e.inventoryOf(t, car.ID))
}

func TestCreate_SameUserRaceKeepsOneActive(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	a, b := e.car(t, 1, "10.00"), e.car(t, 1, "20.00")

	var wg sync.WaitGroup
	errsOut := make([]error, 2)
	for i, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, carID int64) {
			defer wg.Done()
			_, errsOut[i] = e.rentals.Create(ctx, 7, carID, 1)
		}(i, id)
	}
	wg.Wait()

	require.True(t, (errsOut[0] == nil) != (errsOut[1] == nil))
	for _, err := range errsOut {
		if err != nil {
			require.ErrorIs(t, err, errs.ErrConflictingRental)
		}
	}
	require.Equal(t, 1, e.inventoryOf(t, a.ID)+e.inventoryOf(t, b.ID))
}

// Scenario E: a pending fine blocks new rentals.
func TestCreate_UnpaidFineBlocks(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 3, "10.00")
	e.st.PutPayment(model.Payment{
		UserID: 5, RentalID: 99, Type: model.PaymentTypeFine, Status: model.PaymentPending,
		AmountToPay: decimal.NewFromInt(60),
	})

	_, err := e.rentals.Create(ctx, 5, car.ID, 2)
	require.ErrorIs(t, err, errs.ErrUnpaidFine)
	require.Equal(t, 3, e.inventoryOf(t, car.ID))
}

// Scenario C: a return two days late opens a fine of 6000 minor units.
func TestReturn_LateOpensFine(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 0, "10.00")
	r := e.st.PutRental(model.Rental{
		UserID: 3, CarID: car.ID, Status: model.RentalLasting,
		RentalDate: e.daysAgo(5), RequiredReturnDate: e.daysAgo(2),
	})

	v, err := e.rentals.Return(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, model.RentalReturned, v.Status)
	require.Equal(t, e.today, *v.ActualReturnDate)
	require.Contains(t, v.ReturnStatus, "You should pay fine")

	require.Equal(t, int64(6000), e.gw.last().AmountMinor)
	require.Equal(t, "Toyota Corolla", e.gw.last().Label)
	require.NotNil(t, v.Fine)
	fine := e.payment(t, v.Fine.ID)
	require.Equal(t, model.PaymentTypeFine, fine.Type)
	require.Equal(t, model.PaymentPending, fine.Status)
	require.Equal(t, "60.00", fine.AmountToPay.StringFixed(2))

	stored := e.rental(t, r.ID)
	require.Equal(t, model.RentalReturned, stored.Status)
	require.Equal(t, 1, e.inventoryOf(t, car.ID))
	require.Equal(t, []notify.EventKind{notify.RentalReturned}, e.events.kinds())

	// the fine now blocks a new rental
	_, err = e.rentals.Create(ctx, 3, car.ID, 1)
	require.ErrorIs(t, err, errs.ErrUnpaidFine)
}

func TestReturn_OnTimeHasNoFine(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 0, "10.00")
	e.st.PutRental(model.Rental{
		UserID: 3, CarID: car.ID, Status: model.RentalLasting,
		RentalDate: e.daysAgo(2), RequiredReturnDate: e.today,
	})

	v, err := e.rentals.Return(ctx, 3)
	require.NoError(t, err)
	require.Nil(t, v.Fine)
	require.Empty(t, e.gw.calls)
	require.Equal(t, e.today.Format(time.DateOnly), v.ReturnStatus)
	require.Equal(t, 1, e.inventoryOf(t, car.ID))

	_, err = e.rentals.Return(ctx, 3)
	require.ErrorIs(t, err, errs.ErrNoActiveRental)
}

func TestReturn_GatewayFailureChangesNothing(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	e.gw.err = errors.New("503 from gateway")
	car := e.car(t, 0, "10.00")
	r := e.st.PutRental(model.Rental{
		UserID: 3, CarID: car.ID, Status: model.RentalLasting,
		RentalDate: e.daysAgo(4), RequiredReturnDate: e.daysAgo(1),
	})

	_, err := e.rentals.Return(ctx, 3)
	require.Equal(t, errs.CodeGatewayFailed, errs.Code(err))
	require.Equal(t, errs.KindExternal, errs.KindOf(err))

	require.Equal(t, model.RentalLasting, e.rental(t, r.ID).Status)
	require.Nil(t, e.rental(t, r.ID).ActualReturnDate)
	require.Equal(t, 0, e.inventoryOf(t, car.ID))
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 1, "10.00")

	require.ErrorIs(t, e.rentals.Cancel(ctx, 1), errs.ErrNoActiveRental)

	v, err := e.rentals.Create(ctx, 1, car.ID, 2)
	require.NoError(t, err)
	p, err := e.payments.Create(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, e.rentals.Cancel(ctx, 1))

	r := e.rental(t, v.ID)
	require.Equal(t, model.RentalCanceled, r.Status)
	require.True(t, r.Archived)
	require.Equal(t, model.PaymentCanceled, e.payment(t, p.ID).Status)
	require.Equal(t, 1, e.inventoryOf(t, car.ID))

	// history still has it
	mine, err := e.rentals.Mine(ctx, 1, model.Page{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestCancel_LastingRefused(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 0, "10.00")
	e.st.PutRental(model.Rental{
		UserID: 2, CarID: car.ID, Status: model.RentalLasting,
		RentalDate: e.today, RequiredReturnDate: e.today.AddDate(0, 0, 1),
	})

	require.ErrorIs(t, e.rentals.Cancel(ctx, 2), errs.ErrCannotCancelActive)
	require.Equal(t, 0, e.inventoryOf(t, car.ID))
}

func TestListings(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 0, "10.00")
	returnedOn := e.daysAgo(1)
	lasting := e.st.PutRental(model.Rental{
		UserID: 4, CarID: car.ID, Status: model.RentalLasting,
		RentalDate: e.daysAgo(1), RequiredReturnDate: e.today.AddDate(0, 0, 2),
	})
	e.st.PutRental(model.Rental{
		UserID: 4, CarID: car.ID, Status: model.RentalReturned,
		RentalDate: e.daysAgo(9), RequiredReturnDate: e.daysAgo(3), ActualReturnDate: &returnedOn,
	})

	active, err := e.rentals.ByUser(ctx, 4, true, model.Page{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, lasting.ID, active[0].ID)
	require.Contains(t, active[0].ReturnStatus, "not returned yet")

	returned, err := e.rentals.ByUser(ctx, 4, false, model.Page{})
	require.NoError(t, err)
	require.Len(t, returned, 1)
	require.Contains(t, returned[0].ReturnStatus, "not in required time")

	_, err = e.rentals.ByUser(ctx, 77, true, model.Page{})
	require.ErrorIs(t, err, errs.ErrNoActiveRental)

	all, err := e.rentals.AllActive(ctx, model.Page{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	got, err := e.rentals.Get(ctx, lasting.ID)
	require.NoError(t, err)
	require.Equal(t, lasting.ID, got.ID)

	_, err = e.rentals.Get(ctx, 12345)
	require.ErrorIs(t, err, errs.ErrRentalNotFound)
}

// a rental returned on its due date is reported late once that date has passed
func TestGet_ReturnStatusComparesDueDateToToday(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)
	car := e.car(t, 1, "10.00")
	due := e.daysAgo(5)
	r := e.st.PutRental(model.Rental{
		UserID: 6, CarID: car.ID, Status: model.RentalReturned,
		RentalDate: e.daysAgo(8), RequiredReturnDate: due, ActualReturnDate: &due,
	})

	v, err := e.rentals.Get(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(v.ReturnStatus, due.Format(time.DateOnly)))
	require.Contains(t, v.ReturnStatus, "not in required time")
}
