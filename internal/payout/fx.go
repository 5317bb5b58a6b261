package payout

import (
	"go.uber.org/fx"
)

// Module provides the payout registry. Adapters are constructed from config
// at the composition root and injected here, so the withdrawal state machine
// only ever sees the Executor port.
var Module = fx.Module("payout",
	fx.Provide(provideRegistry),
)

type RegistryParams struct {
	fx.In

	Executors []Executor `group:"payout_executors"`
}

func provideRegistry(p RegistryParams) *Registry {
	registry := NewRegistry(p.Executors...)
	registry.MapMethod("stripe_connect", "stripe")
	registry.MapMethod("bank_transfer", "manual")
	return registry
}
