package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
	pkgkafka "CoinSight/pkg/kafka"
)

// KafkaPricesHandler consumes published price points and persists them to
// the time-series store. Wire schema matches the publisher:
// {instrument_id, ts (unix ms), price, market_cap, volume}.
type KafkaPricesHandler struct {
	topic   string
	store   domrepo.PriceStore
	metrics domrepo.Metrics
}

func NewKafkaPricesHandler(topic string, store domrepo.PriceStore, metrics domrepo.Metrics) *KafkaPricesHandler {
	return &KafkaPricesHandler{topic: topic, store: store, metrics: metrics}
}

func (h *KafkaPricesHandler) Topic() string { return h.topic }

func (h *KafkaPricesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		InstrumentID string  `json:"instrument_id"`
		TS           int64   `json:"ts"`
		Price        float64 `json:"price"`
		MarketCap    float64 `json:"market_cap"`
		Volume       float64 `json:"volume"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	ts := time.UnixMilli(m.TS).UTC()
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(ts).Seconds())

	start := time.Now()
	err := h.store.StoreBatch(ctx, []models.PricePoint{{
		InstrumentID: m.InstrumentID,
		Timestamp:    ts,
		Price:        m.Price,
		MarketCap:    m.MarketCap,
		Volume:       m.Volume,
	}})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordPointsIngested("clickhouse", m.InstrumentID, 1)
	h.metrics.RecordLastPrice(m.InstrumentID, m.Price)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaPricesHandler)(nil)
