package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/soundbay/soundbay/pkg/logger"
)

const defaultBaseURL = "https://api.razorpay.com"

// Config holds Razorpay API credentials.
type Config struct {
	KeyID     string `mapstructure:"key_id"`
	KeySecret string `mapstructure:"key_secret"`
	BaseURL   string `mapstructure:"base_url"`
}

// Order is a payment order created at the gateway.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Gateway creates orders and verifies payment signatures.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Client talks to the Razorpay orders API.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  logger.WithModule("payment.razorpay"),
	}
}

// CreateOrder registers an order for the given amount in the smallest
// currency unit.
func (c *Client) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*Order, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.log.Error("gateway rejected order",
			zap.Int("status", resp.StatusCode),
			zap.Int64("amount_paise", amountPaise))
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay attaches to a
// completed payment. The signed payload is "<order_id>|<payment_id>".
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.cfg.KeySecret, orderID, paymentID, signature)
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
