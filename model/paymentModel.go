package model

import "github.com/shopspring/decimal"

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeFine    PaymentType = "FINE"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentCanceled PaymentStatus = "CANCELED"
	PaymentExpired  PaymentStatus = "EXPIRED"
)

// Final statuses are never left.
func (s PaymentStatus) Final() bool { return s != PaymentPending }

// Payment.AmountToPay is in major units with two decimals.
type Payment struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	RentalID    int64           `json:"rental_id"`
	Type        PaymentType     `json:"type"`
	Status      PaymentStatus   `json:"status"`
	AmountToPay decimal.Decimal `json:"amount_to_pay"`
	SessionID   string          `json:"session_id"`
	SessionURL  string          `json:"session_url"`
	Archived    bool            `json:"-"`
}

// CheckoutReq opens an external checkout session. AmountMinor is in cents.
type CheckoutReq struct {
	ExternalID  string
	AmountMinor int64
	Label       string
}

type CheckoutSession struct {
	ID  string
	URL string
}
