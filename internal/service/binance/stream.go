package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a TickerStream backed by the Binance miniTicker
// WebSocket feed.
type Stream struct {
	websocketURL   string
	symbols        []string
	instruments    map[string]string // upper symbol -> instrument id
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	nextReqID int
}

// New creates a Binance ticker stream. symbolMap maps exchange symbols
// (e.g. BTCUSDT) to instrument ids (e.g. bitcoin).
func New(websocketURL string, symbolMap map[string]string, reconnectDelay, pingInterval time.Duration, lgr *logger.Logger) drepo.TickerStream {
	symbols := make([]string, 0, len(symbolMap))
	instruments := make(map[string]string, len(symbolMap))
	for sym, id := range symbolMap {
		up := strings.ToUpper(sym)
		symbols = append(symbols, up)
		instruments[up] = id
	}
	return &Stream{
		websocketURL:   websocketURL,
		symbols:        symbols,
		instruments:    instruments,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.logger.Info("binance stream connected")
	return nil
}

// Subscribe subscribes to the miniTicker stream for configured symbols.
func (s *Stream) Subscribe(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	connected := s.connected
	s.nextReqID++
	reqID := s.nextReqID
	s.mu.Unlock()

	if conn == nil || !connected {
		return fmt.Errorf("binance not connected")
	}

	params := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		params = append(params, strings.ToLower(sym)+"@miniTicker")
	}

	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     reqID,
	}
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("binance subscribe: %w", err)
	}
	s.logger.Info("binance subscribed", logger.Int("streams", len(params)))
	return nil
}

// miniTicker is the Binance 24hr rolling mini ticker event.
type miniTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"` // ms
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
}

// Read streams Ticker events and errors. The returned channels close when
// the read loop ends; after Reconnect the caller must invoke Read again to
// resume on the fresh connection.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	ticks := make(chan *models.Ticker, 1024)
	errs := make(chan error, 1)

	// snapshot: each Read owns the connection it was started with, so a
	// later Reconnect can never swap it mid-loop
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(done)
		defer close(ticks)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}

				var mt miniTicker
				if err := json.Unmarshal(b, &mt); err != nil || mt.EventType != "24hrMiniTicker" {
					// subscription acks and other frames
					continue
				}

				instrumentID, ok := s.instruments[mt.Symbol]
				if !ok {
					continue
				}
				price, err := strconv.ParseFloat(mt.Close, 64)
				if err != nil {
					continue
				}
				volume, _ := strconv.ParseFloat(mt.Volume, 64)

				tick := &models.Ticker{
					InstrumentID: instrumentID,
					Timestamp:    mt.EventTime / 1000,
					Price:        price,
					Volume:       volume,
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.connected = false
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}
