package repository

import (
	"context"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
	pkgkafka "CoinSight/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates a Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) domrepo.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, point models.PricePoint) error {
	return p.producer.Publish(ctx, p.topic, []byte(point.InstrumentID), wireValue(point))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(points))
	for i, point := range points {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(point.InstrumentID),
			Value: wireValue(point),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func wireValue(point models.PricePoint) map[string]interface{} {
	return map[string]interface{}{
		"instrument_id": point.InstrumentID,
		"ts":            point.Timestamp.UnixMilli(),
		"price":         point.Price,
		"market_cap":    point.MarketCap,
		"volume":        point.Volume,
	}
}
