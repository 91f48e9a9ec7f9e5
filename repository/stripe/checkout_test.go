package striperepo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"carsharing/model"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newTestRepo(t *testing.T, h http.HandlerFunc) Repo {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return New("sk_test_123", "https://app.test/ok", "https://app.test/cancel", &stripe.Backends{API: b, Connect: b, Uploads: b})
}

func TestCreateSession(t *testing.T) {
	var (
		path string
		form url.Values
	)
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.test/cs_test_1"}`))
	})

	s, err := repo.CreateSession(context.Background(), model.CheckoutReq{
		ExternalID: "FINE:3:9", AmountMinor: 3705, Label: "Toyota Corolla",
	})
	require.NoError(t, err)
	require.Equal(t, &model.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.test/cs_test_1"}, s)

	require.Equal(t, "/v1/checkout/sessions", path)
	require.Equal(t, "payment", form.Get("mode"))
	require.Equal(t, "FINE:3:9", form.Get("client_reference_id"))
	require.Equal(t, "3705", form.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	require.Equal(t, "Toyota Corolla", form.Get("line_items[0][price_data][product_data][name]"))
	require.Equal(t, "https://app.test/ok", form.Get("success_url"))
}

func TestCreateSessionErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"bad amount"}}`))
		})
		_, err := repo.CreateSession(context.Background(), model.CheckoutReq{AmountMinor: 1})
		require.Error(t, err)
	})
	t.Run("empty session", func(t *testing.T) {
		repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"object":"checkout.session"}`))
		})
		_, err := repo.CreateSession(context.Background(), model.CheckoutReq{AmountMinor: 1})
		require.Error(t, err)
	})
}
