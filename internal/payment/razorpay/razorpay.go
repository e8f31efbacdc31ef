package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("razorpay config invalid")
	ErrRequestInvalid  = errors.New("razorpay request invalid")
	ErrRequestFailed   = errors.New("razorpay request failed")
	ErrResponseInvalid = errors.New("razorpay response invalid")
)

const (
	defaultAPIBaseURL = "https://api.razorpay.com"
	defaultCurrency   = "INR"
	defaultTimeout    = 12 * time.Second
	maxReceiptLength  = 40
	currencyScale     = 2
)

// Config 网关客户端配置，进程启动时构造一次。
type Config struct {
	KeyID      string
	KeySecret  string
	APIBaseURL string
	Currency   string
	Timeout    time.Duration
}

// CreateOrderInput 创建网关订单输入（金额为主币单位）。
type CreateOrderInput struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order 网关订单（金额为最小货币单位）。
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Raw      map[string]interface{}
}

// Payment 网关支付详情（只读，用于对账）。
type Payment struct {
	ID               string
	OrderID          string
	Amount           int64
	Currency         string
	Status           string
	Method           string
	Captured         bool
	ErrorCode        string
	ErrorDescription string
	CreatedAt        *time.Time
	Raw              map[string]interface{}
}

// Client 网关客户端。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient 校验配置并创建客户端，缺少凭据时直接失败。
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// ValidateConfig 校验配置。
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeyID) == "" {
		return fmt.Errorf("%w: key_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.KeySecret) == "" {
		return fmt.Errorf("%w: key_secret is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(cfg.APIBaseURL)); err != nil {
		return fmt.Errorf("%w: api_base_url is invalid", ErrConfigInvalid)
	}
	if len(strings.TrimSpace(cfg.Currency)) != 3 {
		return fmt.Errorf("%w: currency is invalid", ErrConfigInvalid)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) normalize() {
	c.KeyID = strings.TrimSpace(c.KeyID)
	c.KeySecret = strings.TrimSpace(c.KeySecret)
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultAPIBaseURL
	}
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// KeyID 返回可下发给客户端的公开 key。
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.cfg.KeyID
}

// Currency 返回默认币种。
func (c *Client) Currency() string {
	if c == nil {
		return defaultCurrency
	}
	return c.cfg.Currency
}

// CreateOrder 在网关创建订单。
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrConfigInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = c.cfg.Currency
	}
	minor, err := ToMinorUnits(input.Amount)
	if err != nil {
		return nil, err
	}
	receipt := NormalizeReceipt(input.Receipt)
	if receipt == "" {
		return nil, fmt.Errorf("%w: receipt is required", ErrRequestInvalid)
	}

	body := map[string]interface{}{
		"amount":   minor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(input.Notes) > 0 {
		body["notes"] = input.Notes
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode order body failed", ErrRequestInvalid)
	}

	respBody, statusCode, err := c.do(ctx, http.MethodPost, "/v1/orders", payload)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, statusError("create order", statusCode)
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	order := &Order{
		ID:       readString(raw, "id"),
		Amount:   readInt64(raw, "amount"),
		Currency: strings.ToUpper(readString(raw, "currency")),
		Receipt:  readString(raw, "receipt"),
		Status:   readString(raw, "status"),
		Raw:      raw,
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", ErrResponseInvalid)
	}
	if order.Amount != minor {
		return nil, fmt.Errorf("%w: order amount %d differs from requested %d", ErrResponseInvalid, order.Amount, minor)
	}
	if order.Currency == "" {
		order.Currency = currency
	}
	return order, nil
}

// FetchPayment 查询网关支付详情。
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrConfigInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment_id is required", ErrRequestInvalid)
	}
	respBody, statusCode, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}
	if statusCode < 200 || statusCode >= 300 {
		return nil, statusError("fetch payment", statusCode)
	}
	raw, err := decodeRawMap(respBody)
	if err != nil {
		return nil, err
	}
	payment := &Payment{
		ID:               readString(raw, "id"),
		OrderID:          readString(raw, "order_id"),
		Amount:           readInt64(raw, "amount"),
		Currency:         strings.ToUpper(readString(raw, "currency")),
		Status:           readString(raw, "status"),
		Method:           readString(raw, "method"),
		Captured:         readBool(raw, "captured"),
		ErrorCode:        readString(raw, "error_code"),
		ErrorDescription: readString(raw, "error_description"),
		Raw:              raw,
	}
	if created := readInt64(raw, "created_at"); created > 0 {
		createdAt := time.Unix(created, 0)
		payment.CreatedAt = &createdAt
	}
	if payment.ID == "" {
		return nil, fmt.Errorf("%w: missing payment id", ErrResponseInvalid)
	}
	return payment, nil
}

// VerifySignature 校验 "{orderID}|{paymentID}" 的 HMAC-SHA256 签名。
// 未配置密钥或任一参数为空时一律返回 false。
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return VerifySignature(c.cfg.KeySecret, orderID, paymentID, signature)
}

// VerifySignature 使用给定密钥校验签名。
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	secret = strings.TrimSpace(secret)
	orderID = strings.TrimSpace(orderID)
	paymentID = strings.TrimSpace(paymentID)
	signature = strings.ToLower(strings.TrimSpace(signature))
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := ComputeSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// ComputeSignature 计算签名（hex 小写）。
func ComputeSignature(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// ToMinorUnits 主币金额转最小货币单位（四舍五入到整数）。
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrRequestInvalid)
	}
	minor := amount.Shift(currencyScale).Round(0)
	if minor.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("%w: amount rounds to zero", ErrRequestInvalid)
	}
	return minor.IntPart(), nil
}

// FromMinorUnits 最小货币单位转主币金额。
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Shift(-currencyScale)
}

// NormalizeReceipt 去除空白并截断到网关允许的长度。
func NormalizeReceipt(receipt string) string {
	receipt = strings.TrimSpace(receipt)
	if len(receipt) > maxReceiptLength {
		receipt = receipt[:maxReceiptLength]
	}
	return receipt
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	endpoint := c.cfg.APIBaseURL + path
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

// statusError 5xx 与 429 视为临时故障（ErrRequestFailed），其余非 2xx 为 ErrResponseInvalid
func statusError(op string, statusCode int) error {
	if statusCode >= 500 || statusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s status %d", ErrRequestFailed, op, statusCode)
	}
	return fmt.Errorf("%w: %s status %d", ErrResponseInvalid, op, statusCode)
}

func decodeRawMap(body []byte) (map[string]interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode response failed", ErrResponseInvalid)
	}
	return raw, nil
}

func readString(raw map[string]interface{}, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	default:
		return ""
	}
}

func readInt64(raw map[string]interface{}, key string) int64 {
	value, ok := raw[key]
	if !ok || value == nil {
		return 0
	}
	switch typed := value.(type) {
	case json.Number:
		parsed, err := typed.Int64()
		if err == nil {
			return parsed
		}
		floatVal, err := typed.Float64()
		if err != nil {
			return 0
		}
		return int64(floatVal)
	case float64:
		return int64(typed)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func readBool(raw map[string]interface{}, key string) bool {
	value, ok := raw[key]
	if !ok || value == nil {
		return false
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		parsed, _ := strconv.ParseBool(strings.TrimSpace(typed))
		return parsed
	default:
		return false
	}
}
