package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vbonduro/whrtrack/internal/watch"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	// Single-user local API; no cross-site session to protect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamSnapshots upgrades the request to a WebSocket and writes every
// snapshot of the subscription as a JSON text frame until either side goes
// away. A failed query is sent as {"error": ...} and the stream continues.
// If subscribe fails, the error frame is sent and the connection closed.
func streamSnapshots[T any](c *gin.Context, logger *slog.Logger, subscribe func(context.Context) (*watch.Subscription[T], error)) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "path", c.Request.URL.Path, "error", err)
		return
	}
	defer closeWithLog(conn, "websocket", logger)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Read loop ends on client close or error.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sub, err := subscribe(ctx)
	if err != nil {
		logger.Warn("watch subscribe failed", "path", c.Request.URL.Path, "error", err)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteJSON(gin.H{"error": err.Error()})
		return
	}
	defer sub.Close()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			var payload any = snap.Value
			if snap.Err != nil {
				logger.Error("snapshot query failed", "path", c.Request.URL.Path, "error", snap.Err)
				payload = gin.H{"error": "failed to load data"}
			}
			if err := conn.WriteJSON(payload); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
