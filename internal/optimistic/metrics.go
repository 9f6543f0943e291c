package optimistic

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/BuzzLyutic/taskpad/internal/optimistic"

const (
	opLoad   = "load"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	outcomeConfirmed = "confirmed"
	outcomeReverted  = "reverted"
	outcomeReloaded  = "reloaded"
	outcomeFailed    = "failed"
	outcomeStale     = "stale"
)

type metrics struct {
	collection string
	ops        metric.Int64Counter
}

func newMetrics(meter metric.Meter, collection string) *metrics {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	ops, err := meter.Int64Counter(
		"taskpad.sync.operations",
		metric.WithDescription("Optimistic operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		ops = noop.Int64Counter{}
	}
	return &metrics{collection: collection, ops: ops}
}

func (m *metrics) record(ctx context.Context, op, outcome string) {
	m.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", m.collection),
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
