package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// PaymentGateway is the slice of the payment processor the workflow needs:
// start a transaction, verify one by reference, and authenticate inbound
// webhook payloads.
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata map[string]string) (*InitializeResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error)
	VerifyWebhookSignature(payload []byte, signature string) bool
}

// InitializeResult is what the caller needs to send the customer to the
// gateway's checkout page.
type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// TransactionStatus is the gateway's view of a transaction.
type TransactionStatus struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"` // minor units
	PaidAt    string `json:"paid_at"`
	Channel   string `json:"channel"`
}

// PaystackClient talks to the Paystack REST API.
type PaystackClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewPaystackClient(secretKey string) *PaystackClient {
	return &PaystackClient{
		secretKey: secretKey,
		baseURL:   "https://api.paystack.co",
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is Paystack's standard response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction starts a transaction for amountMinor (the currency's
// minor unit, e.g. kobo) and returns the checkout handle.
func (c *PaystackClient) InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata map[string]string) (*InitializeResult, error) {
	body := map[string]interface{}{
		"email":  email,
		"amount": amountMinor,
	}
	if len(metadata) > 0 {
		body["metadata"] = metadata
	}

	var result InitializeResult
	if err := c.post(ctx, "/transaction/initialize", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyTransaction pulls the current status of a transaction by reference.
func (c *PaystackClient) VerifyTransaction(ctx context.Context, reference string) (*TransactionStatus, error) {
	var result TransactionStatus
	if err := c.get(ctx, "/transaction/verify/"+reference, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 signature Paystack sends in
// the x-paystack-signature header against the raw request body.
func (c *PaystackClient) VerifyWebhookSignature(payload []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *PaystackClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *PaystackClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *PaystackClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("paystack response read failed: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("paystack response malformed: %w", err)
	}
	if resp.StatusCode >= 400 || !env.Status {
		return fmt.Errorf("paystack error: %s", env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("paystack data malformed: %w", err)
		}
	}
	return nil
}

// ToMinorUnits converts a major-unit amount to the gateway's minor-unit
// integer representation (×100).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
