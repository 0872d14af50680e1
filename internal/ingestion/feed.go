package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"strategy-validation-lab/internal/domain"
)

// FeedConfig configures WebSocket feed client behavior.
type FeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// klineEvent is a Binance-style kline stream message. String-encoded
// prices are the exchange convention.
type klineEvent struct {
	EventType string `json:"e"`
	// EventTimeMs must be declared so the "E" key matches it exactly;
	// otherwise encoding/json's case-insensitive fallback routes "E"
	// into the string-typed "e" field and decoding fails.
	EventTimeMs int64  `json:"E"`
	Symbol      string `json:"s"`
	Kline     struct {
		OpenTimeMs  int64  `json:"t"`
		CloseTimeMs int64  `json:"T"`
		Symbol      string `json:"s"`
		Open        string `json:"o"`
		High        string `json:"h"`
		Low         string `json:"l"`
		Close       string `json:"c"`
		Volume      string `json:"v"`
		Closed      bool   `json:"x"`
	} `json:"k"`
}

// FeedClient consumes a kline WebSocket stream and emits closed bars as
// domain candles. In-progress bar updates are dropped: only a bar's
// final print enters the series, so look-ahead-safe consumers never see
// a candle revise itself.
type FeedClient struct {
	endpoint string
	config   FeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	candles chan domain.Candle

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool
}

// NewFeedClient creates a feed client and connects to the endpoint. The
// endpoint must already name the stream (e.g. .../ws/btcusdt@kline_1m).
func NewFeedClient(ctx context.Context, endpoint string, config *FeedConfig) (*FeedClient, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}

	c := &FeedClient{
		endpoint: endpoint,
		config:   cfg,
		// Buffer absorbs bursts; blocking send ensures no bar loss.
		candles: make(chan domain.Candle, 1024),
		done:    make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

// Candles returns the closed-bar channel. Closed on Close.
func (c *FeedClient) Candles() <-chan domain.Candle {
	return c.candles
}

// connect establishes WebSocket connection.
func (c *FeedClient) connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	c.conn = conn
	return nil
}

// Close closes the WebSocket connection and the candle channel.
func (c *FeedClient) Close() error {
	if c.closed.Swap(true) {
		return nil // Already closed
	}

	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()

	c.wg.Wait()
	close(c.candles)
	return nil
}

// readLoop reads messages and emits closed bars.
func (c *FeedClient) readLoop() {
	defer c.wg.Done()

	reconnectDelay := c.config.ReconnectDelay

	for !c.closed.Load() {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		if conn == nil {
			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}

			// Connection error, reconnect with exponential backoff.
			if !c.reconnecting.Swap(true) {
				go c.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > c.config.MaxReconnectDelay {
				reconnectDelay = c.config.MaxReconnectDelay
			}

			select {
			case <-c.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Successful read resets the backoff.
		reconnectDelay = c.config.ReconnectDelay

		candle, ok, err := parseKlineMessage(message)
		if err != nil || !ok {
			// Non-kline frames (subscription acks, in-progress bars)
			// are expected traffic.
			continue
		}

		select {
		case c.candles <- candle:
		case <-c.done:
			return
		}
	}
}

// reconnect re-establishes the connection after a delay.
func (c *FeedClient) reconnect(delay time.Duration) {
	defer c.reconnecting.Store(false)

	select {
	case <-c.done:
		return
	case <-time.After(delay):
	}

	if c.closed.Load() {
		return
	}

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// connect failures are retried by the next readLoop iteration
	// seeing a nil conn and the read error path firing again.
	_ = c.connect(ctx)
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (c *FeedClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.conn != nil {
				c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
				c.conn.WriteMessage(websocket.PingMessage, nil)
			}
			c.connMu.Unlock()
		}
	}
}

// parseKlineMessage decodes one frame. ok is false for frames that are
// not closed-bar kline events.
func parseKlineMessage(message []byte) (domain.Candle, bool, error) {
	var ev klineEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		return domain.Candle{}, false, fmt.Errorf("decode kline frame: %w", err)
	}
	if ev.EventType != "kline" || !ev.Kline.Closed {
		return domain.Candle{}, false, nil
	}

	var prices [5]float64
	for i, s := range []string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume} {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, false, fmt.Errorf("bad kline price %q: %w", s, err)
		}
		prices[i] = v
	}

	return domain.Candle{
		Instrument:  ev.Symbol,
		TimestampMs: ev.Kline.CloseTimeMs,
		Open:        prices[0],
		High:        prices[1],
		Low:         prices[2],
		Close:       prices[3],
		Volume:      prices[4],
	}, true, nil
}
