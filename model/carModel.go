package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type CarType string

const (
	CarSedan     CarType = "SEDAN"
	CarSUV       CarType = "SUV"
	CarHatchback CarType = "HATCHBACK"
	CarUniversal CarType = "UNIVERSAL"
)

// ParseCarType matches case-insensitively.
func ParseCarType(s string) (CarType, error) {
	switch t := CarType(strings.ToUpper(strings.TrimSpace(s))); t {
	case CarSedan, CarSUV, CarHatchback, CarUniversal:
		return t, nil
	}
	return "", fmt.Errorf("unknown car type %q", s)
}

// Car.Inventory counts units currently available for rental. It is only
// changed through the inventory ledger.
type Car struct {
	ID        int64           `json:"id"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Type      CarType         `json:"type"`
	Inventory int             `json:"inventory"`
	DailyFee  decimal.Decimal `json:"daily_fee"`
	Archived  bool            `json:"-"`
}

// Label is the checkout line-item name.
func (c Car) Label() string { return c.Brand + " " + c.Model }

// CarFilter is a search over the catalog. Empty slices are ignored.
type CarFilter struct {
	Models   []string
	Brands   []string
	Types    []CarType
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

// CarPatch carries optional fields of a partial car update.
type CarPatch struct {
	Brand     *string
	Model     *string
	Type      *CarType
	Inventory *int
	DailyFee  *decimal.Decimal
}

func (p CarPatch) Apply(c *Car) {
	if p.Brand != nil {
		c.Brand = *p.Brand
	}
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Inventory != nil {
		c.Inventory = *p.Inventory
	}
	if p.DailyFee != nil {
		c.DailyFee = *p.DailyFee
	}
}
