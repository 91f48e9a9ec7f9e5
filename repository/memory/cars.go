package memory

import (
	"context"
	"slices"
	"sort"

	"carsharing/model"

	"github.com/jackc/pgx/v5"
)

type Cars struct{ s *Store }

func (c *Cars) Create(ctx context.Context, car *model.Car) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	car.ID = c.s.nextID()
	c.s.cars[car.ID] = *car
	return nil
}

func (c *Cars) Update(ctx context.Context, car *model.Car, inventoryDelta int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cur, ok := c.s.cars[car.ID]
	if !ok || cur.Archived || cur.Inventory+inventoryDelta < 0 {
		return pgx.ErrNoRows
	}
	cur.Brand, cur.Model, cur.Type, cur.DailyFee = car.Brand, car.Model, car.Type, car.DailyFee
	cur.Inventory += inventoryDelta
	c.s.cars[car.ID] = cur
	*car = cur
	return nil
}

func (c *Cars) Archive(ctx context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cur, ok := c.s.cars[id]
	if !ok || cur.Archived {
		return pgx.ErrNoRows
	}
	cur.Archived = true
	c.s.cars[id] = cur
	return nil
}

func (c *Cars) GetByID(ctx context.Context, id int64) (*model.Car, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	car, ok := c.s.cars[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &car, nil
}

func (c *Cars) ListAvailable(ctx context.Context, p model.Page) ([]model.Car, error) {
	return c.filter(p, func(car model.Car) bool { return car.Inventory > 0 }), nil
}

func (c *Cars) Search(ctx context.Context, f model.CarFilter, p model.Page) ([]model.Car, error) {
	return c.filter(p, func(car model.Car) bool {
		if len(f.Models) > 0 && !slices.Contains(f.Models, car.Model) {
			return false
		}
		if len(f.Brands) > 0 && !slices.Contains(f.Brands, car.Brand) {
			return false
		}
		if len(f.Types) > 0 && !slices.Contains(f.Types, car.Type) {
			return false
		}
		if f.PriceMin != nil && f.PriceMax != nil &&
			(car.DailyFee.LessThan(*f.PriceMin) || car.DailyFee.GreaterThan(*f.PriceMax)) {
			return false
		}
		return true
	}), nil
}

func (c *Cars) filter(p model.Page, keep func(model.Car) bool) []model.Car {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	var out []model.Car
	for _, car := range c.s.cars {
		if !car.Archived && keep(car) {
			out = append(out, car)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	from, to := p.Window(len(out))
	return out[from:to]
}

func (c *Cars) DecrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	car, ok := c.s.cars[id]
	if !ok || car.Archived || car.Inventory <= 0 {
		return nil, pgx.ErrNoRows
	}
	car.Inventory--
	c.s.cars[id] = car
	return &car, nil
}

func (c *Cars) IncrementInventory(ctx context.Context, tx pgx.Tx, id int64) (*model.Car, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	car, ok := c.s.cars[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	car.Inventory++
	c.s.cars[id] = car
	return &car, nil
}
