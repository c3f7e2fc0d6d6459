package devicesync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/meshcfg/internal/moduleconfig"
)

var upgrader = websocket.Upgrader{}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// bridgeServer answers each connection with handle after reading the
// subscribe message.
func bridgeServer(t *testing.T, handle func(conn *websocket.Conn, attempt int, sub BridgeMessage)) *httptest.Server {
	t.Helper()
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub BridgeMessage
		if err := conn.ReadJSON(&sub); err != nil {
			return
		}
		handle(conn, int(attempts.Add(1)), sub)
	}))
	t.Cleanup(server.Close)
	return server
}

func fastSource(url string) *WebSocketSource {
	src := NewWebSocketSource(url, "!a1b2c3d4")
	src.RetryDelay = 10 * time.Millisecond
	src.MaxRetryDelay = 20 * time.Millisecond
	return src
}

func TestWebSocketSourceDeliversSnapshot(t *testing.T) {
	subscribed := make(chan BridgeMessage, 1)
	server := bridgeServer(t, func(conn *websocket.Conn, _ int, sub BridgeMessage) {
		subscribed <- sub
		_ = conn.WriteJSON(BridgeMessage{
			Type:   MessageModuleConfig,
			Node:   sub.Node,
			Config: &moduleconfig.ModuleConfig{RemoteHardware: &moduleconfig.RemoteHardwareConfig{Enabled: true}},
		})
		// hold the connection until the client goes away
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config, err := First(ctx, fastSource(wsURL(server)))
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if !config.RemoteHardware.Enabled {
		t.Errorf("config = %+v", config.RemoteHardware)
	}
	if config.Node != "!a1b2c3d4" {
		t.Errorf("Node = %q, want node from envelope", config.Node)
	}

	sub := <-subscribed
	if sub.Type != MessageSubscribe || sub.Node != "!a1b2c3d4" {
		t.Errorf("subscribe message = %+v", sub)
	}
}

func TestWebSocketSourceReconnects(t *testing.T) {
	server := bridgeServer(t, func(conn *websocket.Conn, attempt int, sub BridgeMessage) {
		if attempt == 1 {
			// drop the first connection without sending anything
			return
		}
		_ = conn.WriteJSON(BridgeMessage{
			Type:   MessageModuleConfig,
			Config: &moduleconfig.ModuleConfig{RemoteHardware: &moduleconfig.RemoteHardwareConfig{AllowUndefinedPinAccess: true}},
		})
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var snapshots []Snapshot
	src := fastSource(wsURL(server))
	err := src.Run(ctx, func(s Snapshot) {
		snapshots = append(snapshots, s)
		if s.Config != nil {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	if len(snapshots) < 2 {
		t.Fatalf("got %d snapshots, want a failure then a config", len(snapshots))
	}
	if snapshots[0].Err == nil {
		t.Error("first delivery should report the dropped connection")
	}
	last := snapshots[len(snapshots)-1]
	if last.Config == nil || !last.Config.RemoteHardware.AllowUndefinedPinAccess {
		t.Errorf("last snapshot = %+v", last)
	}
}

func TestWebSocketSourceBridgeError(t *testing.T) {
	server := bridgeServer(t, func(conn *websocket.Conn, _ int, _ BridgeMessage) {
		_ = conn.WriteJSON(BridgeMessage{Type: MessageError, Message: "node not connected"})
		_, _, _ = conn.ReadMessage()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan error, 1)
	go func() {
		_ = fastSource(wsURL(server)).Run(ctx, func(s Snapshot) {
			if s.Err != nil {
				select {
				case got <- s.Err:
				default:
				}
				cancel()
			}
		})
	}()

	select {
	case err := <-got:
		var se *SyncError
		if !errors.As(err, &se) || se.Type != ErrTypeBridge || se.Message != "node not connected" {
			t.Errorf("error = %v, want bridge error", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no error delivered")
	}
}

func TestWebSocketSourceDropsSilentBridge(t *testing.T) {
	server := bridgeServer(t, func(conn *websocket.Conn, _ int, _ BridgeMessage) {
		// swallow pings so the client never sees a pong
		conn.SetPingHandler(func(string) error { return nil })
		_ = conn.WriteJSON(BridgeMessage{
			Type:   MessageModuleConfig,
			Config: &moduleconfig.ModuleConfig{RemoteHardware: &moduleconfig.RemoteHardwareConfig{Enabled: true}},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	src := fastSource(wsURL(server))
	src.PingInterval = 20 * time.Millisecond
	src.PongWait = 200 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan error, 1)
	go func() {
		_ = src.Run(ctx, func(s Snapshot) {
			if s.Err != nil {
				select {
				case got <- s.Err:
				default:
				}
				cancel()
			}
		})
	}()

	select {
	case err := <-got:
		var se *SyncError
		if !errors.As(err, &se) || se.Type != ErrTypeTimeout || !se.Retryable {
			t.Errorf("error = %v, want retryable timeout", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("silent bridge was never dropped")
	}
}

func TestWebSocketSourcePongsKeepSessionAlive(t *testing.T) {
	server := bridgeServer(t, func(conn *websocket.Conn, _ int, _ BridgeMessage) {
		_ = conn.WriteJSON(BridgeMessage{
			Type:   MessageModuleConfig,
			Config: &moduleconfig.ModuleConfig{RemoteHardware: &moduleconfig.RemoteHardwareConfig{Enabled: true}},
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	src := fastSource(wsURL(server))
	src.PingInterval = 20 * time.Millisecond
	src.PongWait = 200 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()

	var failures []error
	err := src.Run(ctx, func(s Snapshot) {
		if s.Err != nil {
			failures = append(failures, s.Err)
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want context.DeadlineExceeded", err)
	}
	if len(failures) != 0 {
		t.Errorf("session failed while the bridge answered pings: %v", failures)
	}
}

func TestWebSocketSourceHandshakeRejected(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := First(ctx, fastSource(wsURL(server)))
	var se *SyncError
	if !errors.As(err, &se) || se.Type != ErrTypeHandshake {
		t.Errorf("First() error = %v, want handshake error", err)
	}
}

func TestWebSocketSourceMaxRetries(t *testing.T) {
	server := bridgeServer(t, func(*websocket.Conn, int, BridgeMessage) {})

	src := fastSource(wsURL(server))
	src.MaxRetries = 2

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	failures := 0
	err := src.Run(ctx, func(s Snapshot) {
		if s.Err != nil {
			failures++
		}
	})
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want give-up error", err)
	}
	if failures != 3 {
		t.Errorf("failures = %d, want 3", failures)
	}
}
