// Package telemetry exposes OpenTelemetry instruments for authorization outcomes.
package telemetry

import (
	"context"

	"github.com/reglet-dev/skillguard/domain/entities"
	"github.com/reglet-dev/skillguard/domain/policy"
	"github.com/reglet-dev/skillguard/domain/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every skillguard instrument.
const MeterName = "skillguard/authz"

var _ ports.DenialHandler = (*DenialMetrics)(nil)

// Option configures metric construction.
type Option func(*config)

type config struct {
	meter metric.Meter
}

// WithMeter overrides the global meter provider's meter.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

func newConfig(opts []Option) config {
	c := config{}
	for _, opt := range opts {
		opt(&c)
	}
	if c.meter == nil {
		c.meter = otel.Meter(MeterName)
	}
	return c
}

// DenialMetrics counts denied skill permission checks. It is a
// ports.DenialHandler so it can sit next to the audit logger.
type DenialMetrics struct {
	DeniedCounter metric.Int64Counter // permission_denied_total{category}
}

// NewDenialMetrics creates the skill denial counter.
func NewDenialMetrics(opts ...Option) (*DenialMetrics, error) {
	c := newConfig(opts)
	counter, err := c.meter.Int64Counter(
		"permission_denied_total",
		metric.WithDescription("Total number of denied skill permission checks"),
		metric.WithUnit("{denial}"),
	)
	if err != nil {
		return nil, err
	}
	return &DenialMetrics{DeniedCounter: counter}, nil
}

// OnDenial increments the counter for the category of the denied permission.
func (m *DenialMetrics) OnDenial(ctx context.Context, skill string, result entities.PermissionCheckResult) {
	m.DeniedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", policy.CategoryOf(result.Permission)),
	))
}

// AccessMetrics counts RBAC decisions made by the HTTP layer.
type AccessMetrics struct {
	DecisionCounter metric.Int64Counter // access_decision_total{outcome}
}

// NewAccessMetrics creates the RBAC decision counter.
func NewAccessMetrics(opts ...Option) (*AccessMetrics, error) {
	c := newConfig(opts)
	counter, err := c.meter.Int64Counter(
		"access_decision_total",
		metric.WithDescription("Total number of RBAC access decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}
	return &AccessMetrics{DecisionCounter: counter}, nil
}

// Outcomes recorded by AccessMetrics.
const (
	OutcomeAllowed         = "allowed"
	OutcomeForbidden       = "forbidden"
	OutcomeUnauthenticated = "unauthenticated"
)

// RecordDecision records one decision. A nil receiver is a no-op.
func (m *AccessMetrics) RecordDecision(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.DecisionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
