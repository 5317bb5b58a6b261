package stripe

import (
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

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	"github.com/bwmarrin/snowflake"
)

const defaultBaseURL = "https://api.stripe.com"

type Config struct {
	SecretKey     string
	WebhookSecret string
	BaseURL       string
	Currency      string
}

// Adapter settles withdrawals as Stripe Connect transfers. It talks to the
// Stripe REST API directly; the webhook side verifies the Stripe-Signature
// header with the shared secret.
type Adapter struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	currency      string
	client        *http.Client
}

func NewAdapter(cfg Config) (*Adapter, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, payout.ErrInvalidConfig
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "usd"
	}
	return &Adapter{
		secretKey:     secret,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		baseURL:       baseURL,
		currency:      currency,
		client:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (a *Adapter) Provider() string { return "stripe" }

func (a *Adapter) Submit(ctx context.Context, req payout.SubmitRequest) (payout.SubmitResult, error) {
	if req.Amount <= 0 || strings.TrimSpace(req.Destination) == "" {
		return payout.SubmitResult{}, payout.ErrInvalidConfig
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = a.currency
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", currency)
	form.Set("destination", strings.TrimSpace(req.Destination))
	form.Set("metadata[withdrawal_id]", req.WithdrawalID.String())
	if strings.TrimSpace(req.Description) != "" {
		form.Set("description", strings.TrimSpace(req.Description))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/transfers", strings.NewReader(form.Encode()))
	if err != nil {
		return payout.SubmitResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if strings.TrimSpace(req.IdempotencyKey) != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		// Transport failure: the transfer may or may not exist downstream.
		// The caller treats this as unknown outcome, not failure.
		return payout.SubmitResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payout.SubmitResult{}, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var transfer stripeTransfer
		if err := json.Unmarshal(body, &transfer); err != nil || strings.TrimSpace(transfer.ID) == "" {
			return payout.SubmitResult{}, payout.ErrInvalidPayload
		}
		return payout.SubmitResult{
			Reference: transfer.ID,
			Outcome:   payout.OutcomeSucceeded,
		}, nil
	}

	var apiErr stripeErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && strings.TrimSpace(apiErr.Error.Message) != "" {
		if resp.StatusCode >= 500 {
			// Stripe-side failure with unknown final state.
			return payout.SubmitResult{}, fmt.Errorf("stripe transfer: %s", apiErr.Error.Message)
		}
		return payout.SubmitResult{
			Outcome:       payout.OutcomeFailed,
			FailureReason: apiErr.Error.Message,
		}, nil
	}
	return payout.SubmitResult{}, fmt.Errorf("stripe transfer: unexpected status %d", resp.StatusCode)
}

func (a *Adapter) Status(ctx context.Context, reference string) (payout.SubmitResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return payout.SubmitResult{}, payout.ErrInvalidConfig
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/transfers/"+url.PathEscape(reference), nil)
	if err != nil {
		return payout.SubmitResult{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.secretKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return payout.SubmitResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return payout.SubmitResult{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return payout.SubmitResult{
			Reference:     reference,
			Outcome:       payout.OutcomeFailed,
			FailureReason: "transfer not found",
		}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payout.SubmitResult{}, fmt.Errorf("stripe transfer status: unexpected status %d", resp.StatusCode)
	}

	var transfer stripeTransfer
	if err := json.Unmarshal(body, &transfer); err != nil {
		return payout.SubmitResult{}, payout.ErrInvalidPayload
	}
	if transfer.Reversed || transfer.AmountReversed >= transfer.Amount && transfer.AmountReversed > 0 {
		return payout.SubmitResult{
			Reference:     transfer.ID,
			Outcome:       payout.OutcomeFailed,
			FailureReason: "transfer reversed",
		}, nil
	}
	return payout.SubmitResult{
		Reference: transfer.ID,
		Outcome:   payout.OutcomeSucceeded,
	}, nil
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	if a.webhookSecret == "" {
		return payout.ErrInvalidConfig
	}
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return payout.ErrInvalidSignature
	}

	timestamp, signatures, err := parseStripeSignature(sigHeader)
	if err != nil {
		return payout.ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return payout.ErrInvalidSignature
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*payout.Notification, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, payout.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, payout.ErrInvalidPayload
	}

	var outcome payout.Outcome
	var reason string
	switch strings.TrimSpace(event.Type) {
	case "transfer.paid", "payout.paid":
		outcome = payout.OutcomeSucceeded
	case "transfer.failed", "payout.failed":
		outcome = payout.OutcomeFailed
		reason = "transfer failed"
	case "transfer.reversed":
		outcome = payout.OutcomeFailed
		reason = "transfer reversed"
	default:
		return nil, payout.ErrEventIgnored
	}

	var transfer stripeTransfer
	if err := json.Unmarshal(event.Data.Object, &transfer); err != nil {
		return nil, payout.ErrInvalidPayload
	}
	if strings.TrimSpace(transfer.ID) == "" {
		return nil, payout.ErrInvalidPayload
	}

	withdrawalID, err := parseWithdrawalID(transfer.Metadata)
	if err != nil {
		return nil, err
	}

	return &payout.Notification{
		Provider:      "stripe",
		Reference:     transfer.ID,
		WithdrawalID:  withdrawalID,
		Outcome:       outcome,
		FailureReason: reason,
		OccurredAt:    timestamp(transfer.Created, event.Created),
	}, nil
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeTransfer struct {
	ID             string         `json:"id"`
	Amount         int64          `json:"amount"`
	AmountReversed int64          `json:"amount_reversed"`
	Currency       string         `json:"currency"`
	Reversed       bool           `json:"reversed"`
	Created        int64          `json:"created"`
	Metadata       map[string]any `json:"metadata"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseStripeSignature(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}

func parseWithdrawalID(metadata map[string]any) (snowflake.ID, error) {
	raw := readMetadataValue(metadata, "withdrawal_id")
	if raw == "" {
		return 0, payout.ErrInvalidPayload
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, payout.ErrInvalidPayload
	}
	return id, nil
}

func readMetadataValue(metadata map[string]any, key string) string {
	if metadata == nil {
		return ""
	}
	value, ok := metadata[key]
	if !ok {
		return ""
	}
	switch cast := value.(type) {
	case string:
		return strings.TrimSpace(cast)
	case float64:
		if cast == 0 {
			return ""
		}
		return strconv.FormatInt(int64(cast), 10)
	case json.Number:
		return cast.String()
	case int64:
		return strconv.FormatInt(cast, 10)
	case int:
		return strconv.Itoa(cast)
	}
	return ""
}
