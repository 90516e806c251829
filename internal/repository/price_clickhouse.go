package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CoinSight/internal/domain/models"
	pkgch "CoinSight/pkg/clickhouse"
	applogger "CoinSight/pkg/logger"
)

// PricePointsTable is the raw price history table.
const PricePointsTable = "coinsight.price_points"

// PriceSchema holds the idempotent DDL for the price history store.
var PriceSchema = []string{
	`CREATE DATABASE IF NOT EXISTS coinsight`,
	`CREATE TABLE IF NOT EXISTS coinsight.price_points (
        instrument_id LowCardinality(String),
        ts            DateTime64(3, 'UTC'),
        price         Float64,
        market_cap    Float64,
        volume        Float64
    )
    ENGINE = ReplacingMergeTree
    PARTITION BY toYYYYMM(ts)
    ORDER BY (instrument_id, ts)`,
}

// CHPriceStore implements PriceStore backed by ClickHouse.
type CHPriceStore struct {
	db *sql.DB
	l  *applogger.Logger
}

// NewCHPriceStore creates the ClickHouse price store and ensures the schema.
func NewCHPriceStore(ch *pkgch.Client, lgr *applogger.Logger) (*CHPriceStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ch.InitSchema(ctx, PriceSchema); err != nil {
		return nil, err
	}
	return &CHPriceStore{db: ch.DB(), l: lgr}, nil
}

// StoreBatch inserts price points in chunks. The ReplacingMergeTree key
// makes re-ingesting an overlapping window idempotent.
func (s *CHPriceStore) StoreBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	const chunkSize = 2000
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, p := range points[start:end] {
			if p.InstrumentID == "" || p.Timestamp.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args, p.InstrumentID, p.Timestamp, p.Price, p.MarketCap, p.Volume)
		}
		if len(values) == 0 {
			continue
		}

		q := fmt.Sprintf("INSERT INTO %s (instrument_id, ts, price, market_cap, volume) VALUES %s",
			PricePointsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return &models.PersistenceError{Op: "store price batch", Err: err}
		}
	}
	return nil
}

// GetHistory returns the ascending series inside [from, to].
func (s *CHPriceStore) GetHistory(ctx context.Context, instrumentID string, from, to time.Time) ([]models.PricePoint, error) {
	q := fmt.Sprintf(`
        SELECT instrument_id, ts, price, market_cap, volume
        FROM %s FINAL
        WHERE instrument_id = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC`, PricePointsTable)
	return s.queryPoints(ctx, "get history", q, instrumentID, from, to)
}

// GetSeries returns the full ascending series for an instrument.
func (s *CHPriceStore) GetSeries(ctx context.Context, instrumentID string) ([]models.PricePoint, error) {
	q := fmt.Sprintf(`
        SELECT instrument_id, ts, price, market_cap, volume
        FROM %s FINAL
        WHERE instrument_id = ?
        ORDER BY ts ASC`, PricePointsTable)
	return s.queryPoints(ctx, "get series", q, instrumentID)
}

// PriceOn returns the last recorded price on the given UTC calendar date.
func (s *CHPriceStore) PriceOn(ctx context.Context, instrumentID string, date time.Time) (float64, bool, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	q := fmt.Sprintf(`
        SELECT price
        FROM %s FINAL
        WHERE instrument_id = ? AND ts >= ? AND ts < ?
        ORDER BY ts DESC
        LIMIT 1`, PricePointsTable)

	var price float64
	err := s.db.QueryRowContext(ctx, q, instrumentID, day, day.Add(24*time.Hour)).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &models.PersistenceError{Op: "price on date", Err: err}
	}
	return price, true, nil
}

func (s *CHPriceStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHPriceStore) queryPoints(ctx context.Context, op, q string, args ...interface{}) ([]models.PricePoint, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse query error", applogger.String("op", op), applogger.Error(err))
		return nil, &models.PersistenceError{Op: op, Err: err}
	}
	defer rows.Close()

	out := make([]models.PricePoint, 0, 1024)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.InstrumentID, &p.Timestamp, &p.Price, &p.MarketCap, &p.Volume); err != nil {
			return nil, &models.PersistenceError{Op: op, Err: err}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: op, Err: err}
	}

	s.l.Debug("clickhouse query ok",
		applogger.String("op", op),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)))
	return out, nil
}
