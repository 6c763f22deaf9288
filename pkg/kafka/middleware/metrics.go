package kafka_middleware

import (
	"context"
	"gatepass/pkg/kafka"
	"gatepass/pkg/metrics"
	"time"
)

const (
	directionPublish = "publish"
	directionConsume = "consume"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage(directionPublish, msg.Topic, time.Since(start), err)
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.KafkaMessage(directionConsume, msg.Topic, time.Since(start), err)
		return err
	}
}
