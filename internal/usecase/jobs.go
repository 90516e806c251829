package usecase

import (
	"context"
	"fmt"

	"CoinSight/pkg/logger"
	"CoinSight/pkg/queue"
)

const (
	// TypeCollectHistory re-fetches price history and recomputes derived
	// data for one instrument.
	TypeCollectHistory = "collect_history"
	// TypeRetrain retrains every horizon model for one instrument.
	TypeRetrain = "retrain"
)

// CollectHistoryPayload is the queue payload for a collection job.
type CollectHistoryPayload struct {
	InstrumentID string `json:"instrument_id"`
	Days         int    `json:"days,omitempty"`
}

// RetrainPayload is the queue payload for a retrain job.
type RetrainPayload struct {
	InstrumentID string `json:"instrument_id"`
}

// CollectHistoryJob ingests fresh history for an instrument and recomputes
// its indicators and features afterwards.
type CollectHistoryJob struct {
	collector *HistoryCollector
	derive    *DeriveUseCase
	l         *logger.Logger
}

func NewCollectHistoryJob(collector *HistoryCollector, derive *DeriveUseCase, l *logger.Logger) *CollectHistoryJob {
	return &CollectHistoryJob{collector: collector, derive: derive, l: l}
}

func (j *CollectHistoryJob) Name() string { return "collect-history" }
func (j *CollectHistoryJob) Type() string { return TypeCollectHistory }

func (j *CollectHistoryJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[CollectHistoryPayload](payload)
	if err != nil {
		return err
	}
	if p.InstrumentID == "" {
		return fmt.Errorf("collect job: instrument id required")
	}

	n, err := j.collector.CollectOne(ctx, p.InstrumentID, p.Days)
	if err != nil {
		return fmt.Errorf("collect %s: %w", p.InstrumentID, err)
	}
	if _, err := j.derive.Recompute(ctx, p.InstrumentID); err != nil {
		return fmt.Errorf("recompute %s: %w", p.InstrumentID, err)
	}

	j.l.Info("collect job done",
		logger.String("instrument", p.InstrumentID),
		logger.Int("points", n))
	return nil
}

// RetrainJob retrains every standard horizon for an instrument.
type RetrainJob struct {
	forecasts *ForecastUseCase
	l         *logger.Logger
}

func NewRetrainJob(forecasts *ForecastUseCase, l *logger.Logger) *RetrainJob {
	return &RetrainJob{forecasts: forecasts, l: l}
}

func (j *RetrainJob) Name() string { return "retrain-models" }
func (j *RetrainJob) Type() string { return TypeRetrain }

func (j *RetrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return err
	}
	if p.InstrumentID == "" {
		return fmt.Errorf("retrain job: instrument id required")
	}

	reports, err := j.forecasts.TrainAll(ctx, p.InstrumentID)
	if err != nil {
		return fmt.Errorf("retrain %s: %w", p.InstrumentID, err)
	}

	j.l.Info("retrain job done",
		logger.String("instrument", p.InstrumentID),
		logger.Int("horizons_trained", len(reports)))
	return nil
}

var (
	_ queue.Job = (*CollectHistoryJob)(nil)
	_ queue.Job = (*RetrainJob)(nil)
)
