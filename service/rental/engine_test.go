package rental_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"carsharing/model"
	"carsharing/repository/memory"
	"carsharing/service/inventory"
	"carsharing/service/notify"
	paymentsvc "carsharing/service/payment"
	rentalsvc "carsharing/service/rental"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu    sync.Mutex
	calls []model.CheckoutReq
	err   error
}

func (g *fakeGateway) CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return nil, g.err
	}
	id := fmt.Sprintf("cs_test_%d", len(g.calls))
	return &model.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (g *fakeGateway) last() model.CheckoutReq {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[len(g.calls)-1]
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(ctx context.Context, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []notify.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.EventKind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type engine struct {
	st       *memory.Store
	rentals  rentalsvc.Service
	payments paymentsvc.Service
	cleaner  rentalsvc.Cleaner
	gw       *fakeGateway
	events   *recorder
	today    time.Time
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	st := memory.New()
	gw := &fakeGateway{}
	rec := &recorder{}
	tr := &rentalsvc.Transitions{
		Rentals:  st.Rentals(),
		Payments: st.Payments(),
		Ledger:   inventory.New(st.Cars()),
	}
	ps := paymentsvc.New(paymentsvc.Deps{
		Tx: st, Payments: st.Payments(), Rentals: st.Rentals(), Cars: st.Cars(),
		Transitions: tr, Gateway: gw, Notifier: rec,
	})
	rs := rentalsvc.New(rentalsvc.Deps{
		Tx: st, Rentals: st.Rentals(), Cars: st.Cars(), Payments: st.Payments(),
		Transitions: tr, Fines: ps, Notifier: rec,
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &engine{
		st: st, rentals: rs, payments: ps,
		cleaner: rentalsvc.NewCleaner(st, tr, log),
		gw:      gw, events: rec,
		today:   model.DateOf(time.Now()),
	}
}

func (e *engine) car(t *testing.T, inventory int, fee string) model.Car {
	t.Helper()
	return e.st.PutCar(model.Car{
		Brand: "Toyota", Model: "Corolla", Type: model.CarSedan,
		Inventory: inventory, DailyFee: decimal.RequireFromString(fee),
	})
}

func (e *engine) inventoryOf(t *testing.T, carID int64) int {
	t.Helper()
	c, err := e.st.Cars().GetByID(context.Background(), carID)
	require.NoError(t, err)
	return c.Inventory
}

func (e *engine) rental(t *testing.T, id int64) *model.Rental {
	t.Helper()
	r, err := e.st.Rentals().GetByID(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (e *engine) payment(t *testing.T, id int64) *model.Payment {
	t.Helper()
	p, err := e.st.Payments().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *engine) daysAgo(n int) time.Time { return e.today.AddDate(0, 0, -n) }
