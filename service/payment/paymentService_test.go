package paymentsvc_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"carsharing/model"
	"carsharing/repository/memory"
	"carsharing/service/errs"
	"carsharing/service/inventory"
	"carsharing/service/notify"
	paymentsvc "carsharing/service/payment"
	rentalsvc "carsharing/service/rental"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type gatewayMock struct {
	createFn func(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error)
	calls    int
}

func (m *gatewayMock) CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
	m.calls++
	if m.createFn == nil {
		id := fmt.Sprintf("cs_%d", m.calls)
		return &model.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
	}
	return m.createFn(ctx, req)
}

type notifierMock struct {
	mu     sync.Mutex
	events []notify.Event
}

func (m *notifierMock) Notify(ctx context.Context, ev notify.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

type fixture struct {
	st    *memory.Store
	svc   paymentsvc.Service
	gw    *gatewayMock
	n     *notifierMock
	today time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	gw := &gatewayMock{}
	n := &notifierMock{}
	tr := &rentalsvc.Transitions{Rentals: st.Rentals(), Payments: st.Payments(), Ledger: inventory.New(st.Cars())}
	svc := paymentsvc.New(paymentsvc.Deps{
		Tx: st, Payments: st.Payments(), Rentals: st.Rentals(), Cars: st.Cars(),
		Transitions: tr, Gateway: gw, Notifier: n,
	})
	return &fixture{st: st, svc: svc, gw: gw, n: n, today: model.DateOf(time.Now())}
}

// pendingRental seeds a car with one unit already reserved by a PENDING rental.
func (f *fixture) pendingRental(userID int64, fee string, days int) (model.Car, model.Rental) {
	car := f.st.PutCar(model.Car{
		Brand: "Honda", Model: "Civic", Type: model.CarSedan,
		Inventory: 0, DailyFee: decimal.RequireFromString(fee),
	})
	r := f.st.PutRental(model.Rental{
		UserID: userID, CarID: car.ID, Status: model.RentalPending,
		RentalDate: f.today, RequiredReturnDate: f.today.AddDate(0, 0, days),
	})
	return car, r
}

// Scenario B: 10.00 a day for 3 days charges 4000 minor units.
func TestCreateAndSucceed(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	var sent model.CheckoutReq
	f.gw.createFn = func(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
		sent = req
		return &model.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil
	}
	_, r := f.pendingRental(1, "10.00", 3)

	p, err := f.svc.Create(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(4000), sent.AmountMinor)
	require.Equal(t, "Honda Civic", sent.Label)
	require.Equal(t, "40.00", p.AmountToPay.StringFixed(2))
	require.Equal(t, model.PaymentPending, p.Status)
	require.Equal(t, "cs_1", p.SessionID)
	require.Equal(t, r.ID, p.RentalID)

	pending, err := f.svc.MyPending(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, p.ID, pending.ID)

	paid, err := f.svc.Success(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPaid, paid.Status)

	stored, err := f.st.Rentals().GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, model.RentalLasting, stored.Status)

	require.Len(t, f.n.events, 2)
	require.Equal(t, notify.RentalCreated, f.n.events[0].Kind)
	require.Equal(t, model.RentalLasting, f.n.events[0].Rental.Status)
	require.Equal(t, notify.PaymentSucceeded, f.n.events[1].Kind)

	_, err = f.svc.MyPending(ctx, 1)
	require.ErrorIs(t, err, errs.ErrNoPendingPayment)
}

func TestCreate_AlreadyPending(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.pendingRental(1, "10.00", 1)

	_, err := f.svc.Create(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, 1)
	require.ErrorIs(t, err, errs.ErrAlreadyPending)
	require.Equal(t, 1, f.gw.calls)
}

func TestCreate_NoPendingRental(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrNoPendingRental)
	require.Zero(t, f.gw.calls)
}

func TestCreate_GatewayFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.gw.createFn = func(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
		return nil, errors.New("connection reset")
	}
	f.pendingRental(1, "10.00", 2)

	_, err := f.svc.Create(ctx, 1)
	require.Equal(t, errs.CodeGatewayFailed, errs.Code(err))

	all, err := f.svc.ListByUser(ctx, 1, model.Page{})
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestSuccess_FineLeavesRentalAlone(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	returned := f.today
	r := f.st.PutRental(model.Rental{
		UserID: 2, CarID: 1, Status: model.RentalReturned,
		RentalDate: f.today.AddDate(0, 0, -4), RequiredReturnDate: f.today.AddDate(0, 0, -1),
		ActualReturnDate: &returned,
	})
	f.st.PutPayment(model.Payment{
		UserID: 2, RentalID: r.ID, Type: model.PaymentTypeFine, Status: model.PaymentPending,
		AmountToPay: decimal.NewFromInt(30),
	})

	p, err := f.svc.Success(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPaid, p.Status)
	require.Len(t, f.n.events, 1)
	require.Equal(t, notify.PaymentSucceeded, f.n.events[0].Kind)

	_, err = f.svc.Success(ctx, 2)
	require.ErrorIs(t, err, errs.ErrNoPendingPayment)
}

func TestCancel_CascadesToRental(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	car, r := f.pendingRental(1, "10.00", 2)

	p, err := f.svc.Create(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, 1))

	gotP, err := f.st.Payments().GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentCanceled, gotP.Status)

	gotR, err := f.st.Rentals().GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.Equal(t, model.RentalCanceled, gotR.Status)

	gotCar, err := f.st.Cars().GetByID(ctx, car.ID)
	require.NoError(t, err)
	require.Equal(t, 1, gotCar.Inventory)

	require.ErrorIs(t, f.svc.Cancel(ctx, 1), errs.ErrNoPendingPayment)
}

func TestCancel_FineNotCancelable(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	fine := f.st.PutPayment(model.Payment{
		UserID: 3, RentalID: 1, Type: model.PaymentTypeFine, Status: model.PaymentPending,
		AmountToPay: decimal.NewFromInt(90),
	})

	require.ErrorIs(t, f.svc.Cancel(ctx, 3), errs.ErrFineNotCancelable)

	got, err := f.st.Payments().GetByID(ctx, fine.ID)
	require.NoError(t, err)
	require.Equal(t, model.PaymentPending, got.Status)
}

func TestPrepareFine(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	car := model.Car{ID: 1, Brand: "Honda", Model: "Civic", DailyFee: decimal.RequireFromString("12.35")}
	r := &model.Rental{ID: 8, UserID: 4}

	p, err := f.svc.PrepareFine(ctx, r, &car, 1)
	require.NoError(t, err)
	require.Zero(t, p.ID)
	require.Equal(t, model.PaymentTypeFine, p.Type)
	require.Equal(t, "37.05", p.AmountToPay.StringFixed(2))

	f.st.PutPayment(*p)
	_, err = f.svc.PrepareFine(ctx, r, &car, 1)
	require.ErrorIs(t, err, errs.ErrAlreadyPending)
}
