package manual

import (
	"context"
	"strings"

	"github.com/Abhi-Verma2005/hrm8-backend-sub003/internal/payout"
	"github.com/google/uuid"
)

// Adapter settles withdrawals out of band: an operator wires the money and
// reports the result through the reconcile endpoint. Submit issues a pending
// reference so the withdrawal stays in PROCESSING until then.
type Adapter struct{}

func NewAdapter() *Adapter { return &Adapter{} }

func (a *Adapter) Provider() string { return "manual" }

func (a *Adapter) Submit(ctx context.Context, req payout.SubmitRequest) (payout.SubmitResult, error) {
	reference := "manual_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return payout.SubmitResult{
		Reference: reference,
		Outcome:   payout.OutcomePending,
	}, nil
}

func (a *Adapter) Status(ctx context.Context, reference string) (payout.SubmitResult, error) {
	return payout.SubmitResult{
		Reference: reference,
		Outcome:   payout.OutcomePending,
	}, nil
}
