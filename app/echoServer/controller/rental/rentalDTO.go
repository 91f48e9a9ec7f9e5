package rental

type CreateRentalReq struct {
	CarID      int64 `json:"car_id" validate:"required,gt=0"`
	DaysToRent int   `json:"days_to_rent" validate:"gte=0,lte=365"`
}
