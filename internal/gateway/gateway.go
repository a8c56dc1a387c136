// Package gateway is the single call surface for AI text generation. It
// resolves the provider/model/key for a request, invokes the matching
// adapter, fails over once to the configured fallback provider, and degrades
// to a deterministic offline response when nothing is usable.
package gateway

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lailalab/aigateway/internal/credentials"
	"github.com/lailalab/aigateway/internal/domain"
	"github.com/lailalab/aigateway/internal/provider"
	"github.com/lailalab/aigateway/internal/registry"
	"github.com/lailalab/aigateway/internal/tokens"
)

// defaultCallTimeout bounds a single provider attempt.
const defaultCallTimeout = 30 * time.Second

// Option configures the gateway.
type Option func(*Gateway)

// WithTimeout sets the per-attempt provider timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithTokenEstimator enables prompt token estimation on attempt logs.
func WithTokenEstimator(est *tokens.Estimator) Option {
	return func(g *Gateway) {
		g.tokens = est
	}
}

// Gateway orchestrates credential resolution, adapter invocation, and the
// bounded fallback chain. It holds no per-call mutable state and is safe for
// concurrent use.
type Gateway struct {
	resolver *credentials.Resolver
	registry *registry.Registry
	adapters map[string]provider.Adapter
	timeout  time.Duration
	tokens   *tokens.Estimator
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a gateway over the given adapters, keyed by service name.
func New(resolver *credentials.Resolver, reg *registry.Registry, adapters map[string]provider.Adapter, opts ...Option) *Gateway {
	g := &Gateway{
		resolver: resolver,
		registry: reg,
		adapters: adapters,
		timeout:  defaultCallTimeout,
		logger:   slog.Default(),
		tracer:   otel.Tracer("aigateway/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// attempt is one planned provider try.
type attempt struct {
	service string
	model   string
	userKey string
}

// Call executes one generation request. It always returns a CallOutcome:
// success from the requested (or default) provider, success from the single
// fallback provider, or an offline degraded response. It never returns an
// error and at most two providers are ever attempted.
func (g *Gateway) Call(ctx context.Context, req *domain.CallRequest) domain.CallOutcome {
	ctx, span := g.tracer.Start(ctx, "gateway.call")
	defer span.End()

	for _, att := range g.plan(req) {
		outcome, err := g.try(ctx, req, att)
		if err != nil {
			g.logger.Warn("provider attempt failed",
				slog.String("service", att.service),
				slog.String("error", err.Error()),
			)
			continue
		}
		span.SetAttributes(
			attribute.String("ai.provider", outcome.Provider),
			attribute.String("ai.model", outcome.ModelUsed),
		)
		return outcome
	}

	g.logger.Warn("all providers unavailable, returning offline response")
	span.SetAttributes(attribute.String("ai.model", domain.OfflineModel))
	return domain.CallOutcome{
		Text:      offlineText(req.SystemPrompt),
		ModelUsed: domain.OfflineModel,
		Degraded:  true,
	}
}

// plan builds the ordered attempt list: the requested (or default) service
// first, then at most one fallback. An explicit user key pins the first
// service: the key must never be retried against a different provider, so
// no fallback is planned.
func (g *Gateway) plan(req *domain.CallRequest) []attempt {
	first := req.Service
	if first == "" {
		first = g.resolver.DefaultService()
	}

	attempts := []attempt{{service: first, model: req.Model, userKey: req.UserAPIKey}}
	if req.UserAPIKey != "" {
		return attempts
	}

	fallback := ""
	if fb, ok := g.registry.Fallback(first); ok {
		fallback = fb.Name
	} else if _, known := g.registry.Get(first); !known {
		// Unknown requested service: treat like a failed provider and fall
		// back to the system default.
		if def := g.resolver.DefaultService(); def != first {
			fallback = def
		}
	}

	if fallback != "" && fallback != first && g.resolver.Available(fallback) {
		// The fallback runs with its own default model; an explicit model
		// choice only applies to the service it was requested for.
		attempts = append(attempts, attempt{service: fallback})
	}
	return attempts
}

// try performs a single resolved provider call.
func (g *Gateway) try(ctx context.Context, req *domain.CallRequest, att attempt) (domain.CallOutcome, error) {
	res, err := g.resolver.Resolve(att.service, att.model, att.userKey)
	if err != nil {
		return domain.CallOutcome{}, err
	}

	adapter, ok := g.adapters[res.Service]
	if !ok {
		return domain.CallOutcome{}, domain.ErrUnsupportedService(res.Service)
	}

	if g.tokens != nil {
		g.logger.Debug("invoking provider",
			slog.String("service", res.Service),
			slog.String("model", res.Model),
			slog.Bool("user_key", res.UserSupplied),
			slog.Int("prompt_tokens_est", g.tokens.Estimate(res.Model, req.SystemPrompt+req.Prompt)),
		)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := adapter.Generate(attemptCtx, &provider.GenerateRequest{
		Model:        res.Model,
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		APIKey:       res.APIKey,
	})
	if err != nil {
		return domain.CallOutcome{}, err
	}

	return domain.CallOutcome{
		Text:      result.Text,
		ModelUsed: res.Model,
		Provider:  res.Service,
	}, nil
}
