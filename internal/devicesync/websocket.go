package devicesync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/meshcfg/internal/logging"
	"github.com/muurk/meshcfg/internal/moduleconfig"
)

const (
	// DefaultRetryDelay is the initial delay before reconnecting
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay caps the exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second

	// DefaultHandshakeTimeout bounds the websocket upgrade
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultPingInterval is how often the client pings an idle bridge
	DefaultPingInterval = 30 * time.Second
)

// Bridge message types
const (
	MessageSubscribe    = "subscribe"
	MessageModuleConfig = "moduleConfig"
	MessageError        = "error"
)

// BridgeMessage is the JSON envelope exchanged with the bridge.
type BridgeMessage struct {
	Type    string                     `json:"type"`
	Node    string                     `json:"node,omitempty"`
	Config  *moduleconfig.ModuleConfig `json:"config,omitempty"`
	Message string                     `json:"message,omitempty"`
}

// WebSocketSource subscribes to a bridge relaying a node's configuration.
type WebSocketSource struct {
	// URL is the bridge endpoint, e.g. "ws://localhost:4404/ws"
	URL string

	// Node selects the node to subscribe to. Empty means the bridge's default.
	Node string

	// Dialer is the websocket dialer (default: a dialer with DefaultHandshakeTimeout)
	Dialer *websocket.Dialer

	// Header is sent with the upgrade request
	Header http.Header

	// MaxRetries limits consecutive failed connection attempts (0 = unlimited)
	MaxRetries int

	// RetryDelay is the initial delay between attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// PingInterval is the keepalive interval (0 = DefaultPingInterval)
	PingInterval time.Duration

	// PongWait is how long the bridge may stay silent, pongs included,
	// before the connection is dropped (0 = twice the ping interval)
	PongWait time.Duration
}

// NewWebSocketSource creates a bridge source for node at url.
func NewWebSocketSource(url, node string) *WebSocketSource {
	return &WebSocketSource{
		URL:           url,
		Node:          node,
		Dialer:        &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout, Proxy: http.ProxyFromEnvironment},
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
		PingInterval:  DefaultPingInterval,
	}
}

// Name implements Source.
func (w *WebSocketSource) Name() string { return "bridge" }

// Run connects to the bridge and emits every moduleConfig message as a
// snapshot. Connection failures are emitted and retried with exponential
// backoff; non-retryable failures end Run.
func (w *WebSocketSource) Run(ctx context.Context, emit func(Snapshot)) error {
	delay := w.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	maxDelay := w.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxRetryDelay
	}

	failures := 0
	for {
		delivered, err := w.session(ctx, emit)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if delivered {
			// a session that produced messages resets the backoff
			failures = 0
			delay = w.RetryDelay
			if delay <= 0 {
				delay = DefaultRetryDelay
			}
		}

		syncErr := ClassifyNetworkError(err, w.URL)
		emit(Snapshot{Source: w.Name(), Received: time.Now(), Err: syncErr})

		if !syncErr.Retryable {
			return syncErr
		}

		failures++
		if w.MaxRetries > 0 && failures > w.MaxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", failures, syncErr)
		}

		logging.Info("Reconnecting to bridge",
			zap.String("url", w.URL),
			zap.Duration("delay", delay),
			zap.Int("attempt", failures),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}

// session runs one connection until it fails or ctx is done. delivered
// reports whether the bridge sent at least one message.
func (w *WebSocketSource) session(ctx context.Context, emit func(Snapshot)) (delivered bool, err error) {
	dialer := w.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout}
	}

	conn, resp, err := dialer.DialContext(ctx, w.URL, w.Header)
	if err != nil {
		if resp != nil {
			logging.Debug("Bridge handshake failed", zap.Int("status", resp.StatusCode))
		}
		return false, err
	}
	defer func() { _ = conn.Close() }()

	logging.Info("Connected to bridge", zap.String("url", w.URL), zap.String("node", w.Node))

	if err := conn.WriteJSON(BridgeMessage{Type: MessageSubscribe, Node: w.Node}); err != nil {
		return false, err
	}

	// a bridge that stops answering pings times the read out
	pongWait := w.pongWait()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// ReadMessage has no context; closing the connection unblocks it
	done := make(chan struct{})
	defer close(done)
	go w.keepalive(ctx, conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return delivered, err
		}
		delivered = true
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg BridgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			emit(Snapshot{
				Source:   w.Name(),
				Received: time.Now(),
				Err:      &SyncError{Type: ErrTypeParse, Message: "malformed bridge message", Source: w.URL, Err: err},
			})
			continue
		}

		switch msg.Type {
		case MessageModuleConfig:
			if msg.Config == nil {
				continue
			}
			if msg.Config.Node == "" {
				msg.Config.Node = msg.Node
			}
			logging.LogSnapshot(w.Name(), msg.Config.Node, len(data))
			emit(Snapshot{Config: msg.Config, Source: w.Name(), Received: time.Now()})

		case MessageError:
			emit(Snapshot{
				Source:   w.Name(),
				Received: time.Now(),
				Err:      &SyncError{Type: ErrTypeBridge, Message: msg.Message, Source: w.URL, Retryable: true},
			})

		default:
			logging.Debug("Ignoring bridge message", zap.String("type", msg.Type))
		}
	}
}

func (w *WebSocketSource) pingInterval() time.Duration {
	if w.PingInterval <= 0 {
		return DefaultPingInterval
	}
	return w.PingInterval
}

func (w *WebSocketSource) pongWait() time.Duration {
	if w.PongWait <= 0 {
		return 2 * w.pingInterval()
	}
	return w.PongWait
}

func (w *WebSocketSource) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(w.pingInterval())
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

// String describes the source for status lines.
func (w *WebSocketSource) String() string {
	return fmt.Sprintf("bridge %s", w.URL)
}
