package car

import (
	"carsharing/model"

	"github.com/shopspring/decimal"
)

type CreateCarReq struct {
	Brand     string          `json:"brand" validate:"required"`
	Model     string          `json:"model" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	Inventory int             `json:"inventory" validate:"gte=0"`
	DailyFee  decimal.Decimal `json:"daily_fee"`
}

func (r CreateCarReq) toModel() model.Car {
	return model.Car{
		Brand:     r.Brand,
		Model:     r.Model,
		Type:      model.CarType(r.Type),
		Inventory: r.Inventory,
		DailyFee:  r.DailyFee,
	}
}

// UpdateCarReq is a partial update; absent fields are kept.
type UpdateCarReq struct {
	Brand     *string          `json:"brand" validate:"omitempty,min=1"`
	Model     *string          `json:"model" validate:"omitempty,min=1"`
	Type      *string          `json:"type" validate:"omitempty,min=1"`
	Inventory *int             `json:"inventory" validate:"omitempty,gte=0"`
	DailyFee  *decimal.Decimal `json:"daily_fee"`
}

func (r UpdateCarReq) toPatch() model.CarPatch {
	p := model.CarPatch{
		Brand:     r.Brand,
		Model:     r.Model,
		Inventory: r.Inventory,
		DailyFee:  r.DailyFee,
	}
	if r.Type != nil {
		t := model.CarType(*r.Type)
		p.Type = &t
	}
	return p
}
