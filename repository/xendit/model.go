package xenditrepo

import (
	"context"

	"carsharing/model"
)

// Repo opens Xendit invoices as checkout sessions.
type Repo interface {
	CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error)
}

type createInvoiceReq struct {
	ExternalID      string  `json:"external_id"`
	Amount          float64 `json:"amount"`
	Description     string  `json:"description"`
	InvoiceDuration int     `json:"invoice_duration"`
	SuccessURL      string  `json:"success_redirect_url,omitempty"`
	FailureURL      string  `json:"failure_redirect_url,omitempty"`
	Currency        string  `json:"currency"`
}

type createInvoiceResp struct {
	ID         string `json:"id"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}
