package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)

// Metrics exposes the wallet core's prometheus counters.
type Metrics struct {
	ledgerTransactions    *prometheus.CounterVec
	withdrawalTransitions *prometheus.CounterVec
	reconciliations       *prometheus.CounterVec
	commissionAccruals    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		ledgerTransactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrm8_wallet",
			Name:      "ledger_transactions_total",
			Help:      "Ledger transactions appended, by type and direction.",
		}, []string{"type", "direction"}),
		withdrawalTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrm8_wallet",
			Name:      "withdrawal_transitions_total",
			Help:      "Withdrawal state transitions, by target state.",
		}, []string{"to"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrm8_wallet",
			Name:      "payout_reconciliations_total",
			Help:      "Payout reconciliation results, by outcome.",
		}, []string{"outcome"}),
		commissionAccruals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrm8_wallet",
			Name:      "commission_accruals_total",
			Help:      "Commissions accrued, by type.",
		}, []string{"type"}),
	}

	prometheus.MustRegister(
		m.ledgerTransactions,
		m.withdrawalTransitions,
		m.reconciliations,
		m.commissionAccruals,
	)
	return m
}

func (m *Metrics) RecordLedgerTransaction(txType, direction string) {
	if m == nil {
		return
	}
	m.ledgerTransactions.WithLabelValues(txType, direction).Inc()
}

func (m *Metrics) RecordWithdrawalTransition(to string) {
	if m == nil {
		return
	}
	m.withdrawalTransitions.WithLabelValues(to).Inc()
}

func (m *Metrics) RecordReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCommissionAccrual(commissionType string) {
	if m == nil {
		return
	}
	m.commissionAccruals.WithLabelValues(commissionType).Inc()
}
