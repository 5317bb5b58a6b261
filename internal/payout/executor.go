package payout

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Outcome is the externally-observed state of a payout attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomePending   Outcome = "pending"
)

var (
	ErrProviderNotFound = errors.New("payout_provider_not_found")
	ErrInvalidConfig    = errors.New("invalid_payout_config")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")
	ErrEventIgnored     = errors.New("webhook_event_ignored")
)

type SubmitRequest struct {
	WithdrawalID   snowflake.ID
	Amount         int64
	Currency       string
	Destination    string
	IdempotencyKey string
	Description    string
}

type SubmitResult struct {
	Reference     string
	Outcome       Outcome
	FailureReason string
}

// Executor is the payment-rail port the withdrawal state machine depends on.
// Concrete adapters are injected at startup; the state machine never imports
// them.
type Executor interface {
	Provider() string
	Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	Status(ctx context.Context, reference string) (SubmitResult, error)
}

// Notification is a canonical payout event parsed from a provider webhook.
type Notification struct {
	Provider      string
	Reference     string
	WithdrawalID  snowflake.ID
	Outcome       Outcome
	FailureReason string
	OccurredAt    time.Time
}

// WebhookAdapter verifies and parses provider webhook deliveries.
type WebhookAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Notification, error)
}
