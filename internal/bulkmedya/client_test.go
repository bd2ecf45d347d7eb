package bulkmedya

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestAddOrder(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "key-1", r.PostForm.Get("key"))
		assert.Equal(t, "add", r.PostForm.Get("action"))
		assert.Equal(t, "9124", r.PostForm.Get("service"))
		assert.Equal(t, "https://tiktok.com/@me", r.PostForm.Get("link"))
		assert.Equal(t, "100", r.PostForm.Get("quantity"))
		w.Write([]byte(`{"order": 23501}`))
	})

	id, err := client.AddOrder(context.Background(), "key-1", 9124, "https://tiktok.com/@me", 100)
	require.NoError(t, err)
	assert.Equal(t, "23501", id)
}

func TestAddOrderBusinessError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Not enough funds on balance"}`))
	})

	_, err := client.AddOrder(context.Background(), "k", 1, "l", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not enough funds on balance", apiErr.Message)
}

func TestStatusSingleAndMany(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("order") != "" {
			w.Write([]byte(`{"charge": "0.00", "status": "Canceled", "currency": "USD"}`))
			return
		}
		assert.Equal(t, "1,2", r.PostForm.Get("orders"))
		w.Write([]byte(`{"1": {"charge": "0.27819", "status": "Partial"}, "2": {"error": "Incorrect order ID"}}`))
	})

	single, err := client.Status(context.Background(), "k", []string{"7"})
	require.NoError(t, err)
	assert.Equal(t, "canceled", single["7"].Normalized())
	assert.True(t, single["7"].Charge.IsZero())

	many, err := client.Status(context.Background(), "k", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "partial", many["1"].Normalized())
	assert.True(t, many["1"].Charge.Equal(decimal.RequireFromString("0.27819")))
	assert.Equal(t, "Incorrect order ID", many["2"].Error)
}

func TestRefill(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refill", r.PostForm.Get("action"))
		if r.PostForm.Get("order") != "" {
			w.Write([]byte(`{"refill": "1"}`))
			return
		}
		w.Write([]byte(`[{"order": 1, "refill": 10}, {"order": 2, "refill": {"error": "Incorrect order ID"}}]`))
	})

	single, err := client.Refill(context.Background(), "k", []string{"5"})
	require.NoError(t, err)
	assert.True(t, single["5"])

	many, err := client.Refill(context.Background(), "k", []string{"1", "2"})
	require.NoError(t, err)
	assert.True(t, many["1"])
	assert.False(t, many["2"])
}

func TestHTTPErrorStatus(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.Status(context.Background(), "k", []string{"1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
