package striperepo

import (
	"context"
	"errors"

	"carsharing/model"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const currency = "usd"

type Repo interface {
	CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error)
}

type repo struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// New builds a Stripe Checkout client. backends may be nil for the defaults.
func New(apiKey, successURL, cancelURL string, backends *stripe.Backends) Repo {
	return &repo{
		api:        client.New(apiKey, backends),
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (r *repo) CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(r.successURL),
		CancelURL:         stripe.String(r.cancelURL),
		ClientReferenceID: stripe.String(req.ExternalID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(req.AmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Label),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.Context = ctx

	s, err := r.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	if s.ID == "" || s.URL == "" {
		return nil, errors.New("stripe: empty checkout session")
	}
	return &model.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}
