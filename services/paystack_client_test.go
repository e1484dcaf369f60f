package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newStubGatewayClient(handler http.HandlerFunc) (*PaystackClient, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewPaystackClient("sk_test_secret")
	client.baseURL = server.URL
	return client, server
}

func TestInitializeTransaction(t *testing.T) {
	client, server := newStubGatewayClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "customer@example.com", body["email"])
		assert.Equal(t, float64(650000), body["amount"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/xyz",
				"access_code": "xyz",
				"reference": "ref_123"
			}
		}`))
	})
	defer server.Close()

	result, err := client.InitializeTransaction(context.Background(), "customer@example.com", 650000, map[string]string{"order_id": "o1"})

	assert.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/xyz", result.AuthorizationURL)
	assert.Equal(t, "ref_123", result.Reference)
}

func TestInitializeTransaction_GatewayRejection(t *testing.T) {
	client, server := newStubGatewayClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
	})
	defer server.Close()

	_, err := client.InitializeTransaction(context.Background(), "customer@example.com", 0, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestVerifyTransaction(t *testing.T) {
	client, server := newStubGatewayClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref_123", r.URL.Path)

		w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"reference": "ref_123",
				"status": "success",
				"amount": 650000,
				"channel": "card"
			}
		}`))
	})
	defer server.Close()

	status, err := client.VerifyTransaction(context.Background(), "ref_123")

	assert.NoError(t, err)
	assert.Equal(t, "success", status.Status)
	assert.Equal(t, int64(650000), status.Amount)
	assert.Equal(t, "card", status.Channel)
}

func TestVerifyWebhookSignature(t *testing.T) {
	client := NewPaystackClient("sk_test_secret")
	payload := []byte(`{"event":"charge.success"}`)

	mac := hmac.New(sha512.New, []byte("sk_test_secret"))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifyWebhookSignature(payload, signature))
	assert.False(t, client.VerifyWebhookSignature(payload, "deadbeef"))
	assert.False(t, client.VerifyWebhookSignature([]byte(`tampered`), signature))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(650000), ToMinorUnits(6500))
	assert.Equal(t, int64(499999), ToMinorUnits(4999.99))
	assert.Equal(t, int64(100), ToMinorUnits(1.004))
	assert.Equal(t, int64(0), ToMinorUnits(0))
}
