package kafka_middleware

import (
	"context"

	"pawcare/pkg/kafka"
	"pawcare/pkg/metrics"
)

// MetricsProducerMiddleware counts publishes per event type and result.
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.ObservePublish(msg.GetEventType(), err)
		return err
	}
}
