package handlers

import (
	"net/http"
	"time"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/events"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsWriteWait  = 10 * time.Second
)

// EventHandler streams live task and timer events over a websocket.
type EventHandler struct {
	bus      *events.Bus
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewEventHandler(bus *events.Bus, logger *zap.Logger) *EventHandler {
	return &EventHandler{
		bus:    bus,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Stream subscribes to one project's events with ?projectId=, otherwise to all.
// GET /api/events/ws
func (h *EventHandler) Stream(c *gin.Context) {
	topic := events.TopicAll
	projectID, ok := parseOptionalIDQuery(c, "projectId")
	if !ok {
		return
	}
	if projectID != nil {
		topic = events.ProjectTopic(*projectID)
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to WebSocket", zap.Error(err), zap.String("remote_addr", c.Request.RemoteAddr))
		return
	}
	defer ws.Close()

	eventsCh, cancel := h.bus.Subscribe(topic)
	defer cancel()

	h.logger.Info("WebSocket subscriber connected", zap.String("topic", topic))
	defer h.logger.Info("WebSocket subscriber disconnected", zap.String("topic", topic))

	ws.SetReadLimit(1024)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Clients only listen; reading drives pong handling and close detection.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("WebSocket read error", zap.Error(err))
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteJSON(event); err != nil {
				h.logger.Debug("WebSocket write error", zap.Error(err))
				return
			}
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
