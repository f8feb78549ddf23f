package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"SignalGate/internal/domain/models"
	drepo "SignalGate/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a SignalStream backed by the upstream generator's
// WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	channels       []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new signal feed stream.
func New(apiKey, websocketURL string, channels []string, reconnectDelay, pingInterval time.Duration) drepo.SignalStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		channels:       channels,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := c.websocketURL
	if c.apiKey != "" {
		u = fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("feed connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("feed: connected")
	return nil
}

// Subscribe subscribes to configured channels.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("feed not connected")
	}
	channels := c.channels
	if len(channels) == 0 {
		channels = []string{"signals"}
	}
	for _, ch := range channels {
		msg := map[string]string{"type": "subscribe", "channel": ch}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
		log.Printf("feed: subscribed %s", ch)
	}
	return nil
}

type feedMessage struct {
	Type string          `json:"type"`
	Data []models.Signal `json:"data"`
}

// Read streams candidate signals and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Signal, <-chan error) {
	signals := make(chan *models.Signal, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(signals)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("feed conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("feed read: %w", err)
					return
				}
				var m feedMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-signal frames
					continue
				}
				if m.Type != "signals" {
					continue
				}
				for i := range m.Data {
					s := m.Data[i]
					select {
					case signals <- &s:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return signals, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
