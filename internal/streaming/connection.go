package streaming

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"Fediview/internal/core/accounts"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
	pingTimeout  = 10 * time.Second
)

// Sink consumes one raw frame from a connection. Delivery is ordered: the
// read loop calls the sink inline, one frame at a time.
type Sink func(ctx context.Context, account accounts.Account, frame []byte)

// Connection is one live streaming connection for one account. It owns a
// reconnect loop; a dropped socket degrades to "no live updates" until the
// next attempt, never discarding cached data.
//
// Close is synchronous with respect to delivery: it acquires the same lock
// the read loop holds while invoking the sink, so once Close returns no
// further frame for this account reaches the sink.
type Connection struct {
	account accounts.Account
	url     string
	sink    Sink
	limiter *rate.Limiter
	metrics *Metrics

	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
}

// NewConnection builds the connection for an account. The streaming URL is
// derived from the account host; the token rides in the query string as the
// backend expects.
func NewConnection(account accounts.Account, sink Sink, metrics *Metrics) *Connection {
	host := account.Host
	host = strings.Replace(host, "https://", "wss://", 1)
	host = strings.Replace(host, "http://", "ws://", 1)
	return &Connection{
		account: account,
		url:     strings.TrimSuffix(host, "/") + "/streaming?i=" + account.Token,
		sink:    sink,
		// One dial attempt per 5s once the burst is spent.
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
		metrics: metrics,
	}
}

// Start runs the connect/read/reconnect loop until ctx is done or Close is
// called.
func (c *Connection) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return nil
	}
	c.cancel = cancel
	c.mu.Unlock()

	log.Printf("streaming: starting connection for account %d", c.account.ID)

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			log.Printf("streaming: connection for account %d shutting down", c.account.ID)
			return ctx.Err()
		default:
			if c.metrics != nil {
				c.metrics.Reconnects.Inc()
			}
			if err := c.connect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("streaming: connection error for account %d: %v. Retrying...", c.account.ID, err)
				continue
			}
		}
	}
}

// Close detaches the connection. After it returns, no event for this
// account is delivered to the sink.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
}

// connect establishes the websocket and processes frames until the
// connection drops.
func (c *Connection) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.account.NormalizedHost(), err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Printf("streaming: failed to close websocket: %v", closeErr)
		}
	}()

	log.Printf("streaming: connected to %s", c.account.NormalizedHost())

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		log.Printf("streaming: failed to set read deadline: %v", err)
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			log.Printf("streaming: failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	var closeOnce sync.Once

	// Ping goroutine keeps the connection alive.
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(pingTimeout)); err != nil {
					log.Printf("streaming: failed to send ping: %v", err)
					closeOnce.Do(func() { close(done) })
					return
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			closeOnce.Do(func() { close(done) })
			return ctx.Err()
		case <-done:
			return fmt.Errorf("connection closed by ping failure")
		default:
		}

		_, frame, err := conn.ReadMessage()
		if err != nil {
			closeOnce.Do(func() { close(done) })
			return fmt.Errorf("read error: %w", err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			log.Printf("streaming: failed to reset read deadline: %v", err)
		}

		c.deliver(ctx, frame)
	}
}

// deliver hands one frame to the sink under the close lock, preserving
// frame order and the detach-before-attach guarantee.
func (c *Connection) deliver(ctx context.Context, frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.sink(ctx, c.account, frame)
}
