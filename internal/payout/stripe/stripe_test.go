package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Config{
		SecretKey:     "sk_test_123",
		WebhookSecret: "whsec_test",
		BaseURL:       baseURL,
		Currency:      "usd",
	})
	require.NoError(t, err)
	return adapter
}

func signPayload(secret string, timestamp int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10) + "." + string(payload)))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func TestNewAdapter_RequiresSecretKey(t *testing.T) {
	_, err := NewAdapter(Config{})
	assert.ErrorIs(t, err, payout.ErrInvalidConfig)
}

func TestSubmit_CreatesTransfer(t *testing.T) {
	var gotIdempotencyKey, gotAuth, gotDestination string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/transfers", r.URL.Path)
		require.NoError(t, r.ParseForm())
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		gotAuth = r.Header.Get("Authorization")
		gotDestination = r.PostFormValue("destination")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"tr_abc","amount":1500,"currency":"usd"}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	result, err := adapter.Submit(context.Background(), payout.SubmitRequest{
		WithdrawalID:   node.Generate(),
		Amount:         1500,
		Currency:       "usd",
		Destination:    "acct_dest_1",
		IdempotencyKey: "wd_test_key",
	})
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeSucceeded, result.Outcome)
	assert.Equal(t, "tr_abc", result.Reference)
	assert.Equal(t, "wd_test_key", gotIdempotencyKey)
	assert.Equal(t, "Bearer sk_test_123", gotAuth)
	assert.Equal(t, "acct_dest_1", gotDestination)
}

func TestSubmit_APIErrorIsDefinitiveFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","code":"balance_insufficient","message":"Insufficient funds"}}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	result, err := adapter.Submit(context.Background(), payout.SubmitRequest{
		Amount:      500,
		Destination: "acct_dest_1",
	})
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeFailed, result.Outcome)
	assert.Equal(t, "Insufficient funds", result.FailureReason)
	assert.Empty(t, result.Reference)
}

func TestSubmit_ServerErrorIsUnknownOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"type":"api_error","message":"Something went wrong"}}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	_, err := adapter.Submit(context.Background(), payout.SubmitRequest{
		Amount:      500,
		Destination: "acct_dest_1",
	})
	// An error, not a failed outcome: callers must not assume the transfer
	// never happened.
	assert.Error(t, err)
}

func TestStatus_ReportsReversalAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/transfers/tr_rev", r.URL.Path)
		fmt.Fprint(w, `{"id":"tr_rev","amount":900,"amount_reversed":900,"reversed":true}`)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	result, err := adapter.Status(context.Background(), "tr_rev")
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeFailed, result.Outcome)
	assert.Equal(t, "transfer reversed", result.FailureReason)
}

func TestVerify_Signature(t *testing.T) {
	adapter := newTestAdapter(t, "")
	ctx := context.Background()
	payload := []byte(`{"id":"evt_1","type":"transfer.paid"}`)
	now := time.Now().Unix()

	headers := http.Header{}
	headers.Set("Stripe-Signature", signPayload("whsec_test", now, payload))
	assert.NoError(t, adapter.Verify(ctx, payload, headers))

	headers.Set("Stripe-Signature", signPayload("whsec_wrong", now, payload))
	assert.ErrorIs(t, adapter.Verify(ctx, payload, headers), payout.ErrInvalidSignature)

	// Tampered body fails against a valid header.
	headers.Set("Stripe-Signature", signPayload("whsec_test", now, payload))
	assert.ErrorIs(t, adapter.Verify(ctx, []byte(`{"id":"evt_2"}`), headers), payout.ErrInvalidSignature)

	headers.Del("Stripe-Signature")
	assert.ErrorIs(t, adapter.Verify(ctx, payload, headers), payout.ErrInvalidSignature)
}

func TestParse_TransferEvents(t *testing.T) {
	adapter := newTestAdapter(t, "")
	ctx := context.Background()
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	withdrawalID := node.Generate()

	event := func(eventType string) []byte {
		return []byte(fmt.Sprintf(
			`{"id":"evt_1","type":%q,"created":1700000000,"data":{"object":{"id":"tr_1","amount":500,"metadata":{"withdrawal_id":%q}}}}`,
			eventType, withdrawalID.String(),
		))
	}

	notification, err := adapter.Parse(ctx, event("transfer.paid"))
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeSucceeded, notification.Outcome)
	assert.Equal(t, "tr_1", notification.Reference)
	assert.Equal(t, withdrawalID, notification.WithdrawalID)
	assert.Equal(t, "stripe", notification.Provider)

	notification, err = adapter.Parse(ctx, event("transfer.failed"))
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeFailed, notification.Outcome)
	assert.Equal(t, "transfer failed", notification.FailureReason)

	notification, err = adapter.Parse(ctx, event("transfer.reversed"))
	require.NoError(t, err)
	assert.Equal(t, payout.OutcomeFailed, notification.Outcome)

	_, err = adapter.Parse(ctx, event("charge.succeeded"))
	assert.ErrorIs(t, err, payout.ErrEventIgnored)

	_, err = adapter.Parse(ctx, []byte(`{"id":"evt_2","type":"transfer.paid","data":{"object":{"id":"tr_2","metadata":{}}}}`))
	assert.ErrorIs(t, err, payout.ErrInvalidPayload)

	_, err = adapter.Parse(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, payout.ErrInvalidPayload)
}
