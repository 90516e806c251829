package di

import (
	"context"

	domrepo "CoinSight/internal/domain/repository"
	mid "CoinSight/internal/middleware"
	"CoinSight/internal/usecase"
	xhttp "CoinSight/pkg/http"
	pkgkafka "CoinSight/pkg/kafka"
	"CoinSight/pkg/queue"
)

func middlewarePipeline(proc *usecase.PriceProcessor, m domrepo.Metrics) *mid.IngestPipeline {
	return mid.NewIngestPipeline(proc, m,
		mid.WithMaxRPS(5),
		mid.WithBufferSize(2000),
	)
}

// Lifecycle adapters binding each long-running piece to the app runner.

type httpComponent struct {
	s *xhttp.Server
}

func (c *httpComponent) Name() string { return "http-server" }
func (c *httpComponent) Start() error { return c.s.Start() }
func (c *httpComponent) Stop(ctx context.Context) error { return c.s.Stop(ctx) }

type historyComponent struct {
	c *usecase.HistoryCollector
}

func (c *historyComponent) Name() string { return "history-collector" }
func (c *historyComponent) Start() error { return c.c.Start(context.Background()) }
func (c *historyComponent) Stop(ctx context.Context) error { return c.c.Stop(ctx) }

type tickerComponent struct {
	c *usecase.TickerCollector
}

func (c *tickerComponent) Name() string { return "ticker-collector" }
func (c *tickerComponent) Start() error { return c.c.Start(context.Background()) }
func (c *tickerComponent) Stop(ctx context.Context) error { return c.c.Shutdown(ctx) }

type consumerComponent struct {
	c *pkgkafka.Consumer
}

func (c *consumerComponent) Name() string { return "kafka-consumer" }
func (c *consumerComponent) Start() error { return c.c.Start() }
func (c *consumerComponent) Stop(ctx context.Context) error { return c.c.Stop(ctx) }

type queueComponent struct {
	q *queue.RedisQueue
}

func (c *queueComponent) Name() string { return "job-queue" }
func (c *queueComponent) Start() error { return c.q.Start() }
func (c *queueComponent) Stop(ctx context.Context) error { return c.q.Stop(ctx) }

type schedulerComponent struct {
	s *usecase.Scheduler
}

func (c *schedulerComponent) Name() string { return "retrain-scheduler" }
func (c *schedulerComponent) Start() error { return c.s.Start(context.Background()) }
func (c *schedulerComponent) Stop(ctx context.Context) error { return c.s.Stop(ctx) }
