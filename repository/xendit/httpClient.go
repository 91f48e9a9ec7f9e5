package xenditrepo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"carsharing/model"
	"carsharing/util/httpx"
)

const (
	defaultBaseURL = "https://api.xendit.co"
	// invoices live one day, the same window the expiry sweep gives a pending rental
	invoiceDurationSec = 24 * 60 * 60
)

type httpRepo struct {
	apiKey     string
	baseURL    string
	successURL string
	cancelURL  string
	client     *http.Client
}

func NewHTTP(apiKey, successURL, cancelURL string, client *http.Client) Repo {
	if client == nil {
		client = httpx.Client()
	}
	return &httpRepo{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		successURL: successURL,
		cancelURL:  cancelURL,
		client:     client,
	}
}

func (r *httpRepo) CreateSession(ctx context.Context, req model.CheckoutReq) (*model.CheckoutSession, error) {
	body := createInvoiceReq{
		ExternalID:      req.ExternalID,
		Amount:          float64(req.AmountMinor) / 100,
		Description:     req.Label,
		InvoiceDuration: invoiceDurationSec,
		SuccessURL:      r.successURL,
		FailureURL:      r.cancelURL,
		Currency:        "USD",
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v2/invoices", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(r.apiKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("xendit create invoice failed: %s", resp.Status)
	}

	var out createInvoiceResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("xendit: empty invoice id")
	}
	return &model.CheckoutSession{ID: out.ID, URL: out.InvoiceURL}, nil
}
