// internal/service/order/infrastructure/kafka_producer.go
package infrastructure

import (
	"context"
	"encoding/json"
	"strconv"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/domain"

	"github.com/segmentio/kafka-go"
)

// OrderEventProducerAdapter 把订单生命周期事件发布到 Kafka。
// 以用户 ID 作为消息 key，同一买家的事件落在同一分区、保持顺序。
type OrderEventProducerAdapter struct {
	writer *kafka.Writer
}

func NewOrderEventProducerAdapter(writer *kafka.Writer) *OrderEventProducerAdapter {
	return &OrderEventProducerAdapter{writer: writer}
}

func (p *OrderEventProducerAdapter) Publish(ctx context.Context, event *domain.OrderEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal order event")
		return err
	}

	key := []byte(strconv.FormatUint(uint64(event.UserID), 10))
	if err := mq.ProduceMessage(ctx, p.writer, key, eventBytes); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("event_type", event.Type).Msg("failed to produce order event")
		return err
	}
	return nil
}
