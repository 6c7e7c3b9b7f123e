// Package hackchat implements the websocket transport for a hack.chat style
// server: JSON frames over a persistent connection, a join handshake on
// connect, and automatic redial after read failures. The transport validates
// and forwards inbound chat frames; all stateful behavior lives in the engine.
package hackchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sun-ldigv3/hack-chat-simple-bot/engine"
	"github.com/sun-ldigv3/hack-chat-simple-bot/telemetry"
)

// Frame is the wire shape shared by inbound and outbound messages. Inbound
// chat frames carry cmd "chat" with nick and text; the join handshake sets
// cmd "join" with channel and nick.
type Frame struct {
	Cmd     string `json:"cmd"`
	Channel string `json:"channel,omitempty"`
	Nick    string `json:"nick,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Client maintains one connection to the chat server and pumps chat events
// into the engine. Writes are serialized with a mutex; gorilla/websocket
// allows only one concurrent writer.
type Client struct {
	serverURL      string
	channel        string
	nick           string
	reconnectDelay time.Duration
	onChat         func(engine.ChatEvent)

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient returns an unconnected client. onChat is invoked for every valid
// inbound chat frame not authored by the bot itself.
func NewClient(serverURL, channel, nick string, reconnectDelay time.Duration, onChat func(engine.ChatEvent)) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	return &Client{
		serverURL:      serverURL,
		channel:        channel,
		nick:           nick,
		reconnectDelay: reconnectDelay,
		onChat:         onChat,
	}
}

// Run dials the server and reads frames until ctx is cancelled, redialing
// after the configured delay whenever the connection drops.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		// One correlation id per connection attempt; every log line and span
		// from this session carries it.
		cctx := telemetry.WithCorrelation(ctx, uuid.NewString())
		log := telemetry.LoggerWithCorr(cctx).With(slog.String("channel", c.channel))
		_, span := telemetry.StartSpan(cctx, "hackchat", "dial")
		err := c.dial(cctx)
		telemetry.RecordError(span, err)
		span.End()
		if err != nil {
			log.Warn("dial failed", slog.Any("err", err))
		} else {
			telemetry.UpdateConnectedGauge(true)
			log.Info("connected", slog.String("server", c.serverURL), slog.String("nick", c.nick))
			c.readLoop(cctx, log)
			c.mu.Lock()
			c.conn = nil
			c.mu.Unlock()
			telemetry.UpdateConnectedGauge(false)
		}
		if telemetry.Reconnects != nil {
			telemetry.Reconnects.Inc()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.reconnectDelay):
		}
	}
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.serverURL, nil)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	// Join handshake precedes any chat traffic.
	return c.write(Frame{Cmd: "join", Channel: c.channel, Nick: c.nick})
}

func (c *Client) readLoop(ctx context.Context, log *slog.Logger) {
	conn := c.current()
	if conn == nil {
		return
	}
	// Unblock the blocking read when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Warn("read failed, will reconnect", slog.Any("err", err))
			}
			_ = conn.Close()
			return
		}
		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			// Malformed payload: log and drop, no outbound reply.
			log.Warn("dropping malformed frame", slog.Any("err", err))
			if telemetry.MessagesDropped != nil {
				telemetry.MessagesDropped.Inc()
			}
			continue
		}
		if f.Cmd != "chat" {
			log.Debug("ignoring non-chat frame", slog.String("cmd", f.Cmd))
			continue
		}
		if f.Nick == c.nick {
			log.Debug("skipping own echo")
			continue
		}
		c.onChat(engine.ChatEvent{Nick: f.Nick, Text: f.Text})
	}
}

// SendChat broadcasts text to the channel, prefixed with "@<mention> " when
// mention is non-empty. Send failures are logged and dropped; the next read
// error triggers the reconnect path.
func (c *Client) SendChat(text, mention string) {
	if mention != "" {
		text = "@" + mention + " " + text
	}
	if err := c.write(Frame{Cmd: "chat", Text: text}); err != nil {
		slog.Warn("send failed", slog.Any("err", err))
	}
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool { return c.current() != nil }

func (c *Client) current() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

func (c *Client) write(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(f)
}
