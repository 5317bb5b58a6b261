package payout

import "strings"

// Registry maps payment methods to the executor that settles them, and
// providers to their webhook adapters.
type Registry struct {
	executors map[string]Executor
	webhooks  map[string]WebhookAdapter
	methods   map[string]string
}

func NewRegistry(executors ...Executor) *Registry {
	registry := &Registry{
		executors: map[string]Executor{},
		webhooks:  map[string]WebhookAdapter{},
		methods:   map[string]string{},
	}
	for _, executor := range executors {
		if executor == nil {
			continue
		}
		provider := strings.ToLower(strings.TrimSpace(executor.Provider()))
		if provider == "" {
			continue
		}
		registry.executors[provider] = executor
		if webhook, ok := executor.(WebhookAdapter); ok {
			registry.webhooks[provider] = webhook
		}
	}
	return registry
}

// MapMethod routes a withdrawal payment method to a provider.
func (r *Registry) MapMethod(method, provider string) {
	if r == nil {
		return
	}
	method = strings.ToLower(strings.TrimSpace(method))
	provider = strings.ToLower(strings.TrimSpace(provider))
	if method == "" || provider == "" {
		return
	}
	r.methods[method] = provider
}

func (r *Registry) ExecutorForMethod(method string) (Executor, error) {
	if r == nil {
		return nil, ErrProviderNotFound
	}
	method = strings.ToLower(strings.TrimSpace(method))
	provider, ok := r.methods[method]
	if !ok {
		provider = method
	}
	executor, ok := r.executors[provider]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return executor, nil
}

func (r *Registry) Webhook(provider string) (WebhookAdapter, error) {
	if r == nil {
		return nil, ErrProviderNotFound
	}
	adapter, ok := r.webhooks[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return adapter, nil
}
