package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aristath/draftboard/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// EventsWSHandler pushes events to websocket clients
type EventsWSHandler struct {
	manager      *events.Manager
	skipOrigin   bool
	pingInterval time.Duration
	log          zerolog.Logger
}

// NewEventsWSHandler creates a websocket event feed.
// devMode accepts connections from any origin.
func NewEventsWSHandler(manager *events.Manager, devMode bool, log zerolog.Logger) *EventsWSHandler {
	return &EventsWSHandler{
		manager:      manager,
		skipOrigin:   devMode,
		pingInterval: 30 * time.Second,
		log:          log.With().Str("component", "events_ws").Logger(),
	}
}

// ServeHTTP handles GET /api/events/ws?types=...
func (h *EventsWSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: h.skipOrigin,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket handshake failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	eventChan, unsubscribe := subscribeFiltered(h.manager, r.URL.Query().Get("types"), h.log)
	defer unsubscribe()

	// Clients only listen; CloseRead handles control frames and cancels ctx on close
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Msg("Client connected to websocket event feed")

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from websocket event feed")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			if err := h.write(ctx, conn, event); err != nil {
				h.logWriteError(err)
				return
			}

		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.logWriteError(err)
				return
			}
		}
	}
}

func (h *EventsWSHandler) write(ctx context.Context, conn *websocket.Conn, event *events.Event) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, event)
}

func (h *EventsWSHandler) logWriteError(err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		h.log.Debug().Err(err).Msg("Websocket closed")
		return
	}
	h.log.Warn().Err(err).Msg("Websocket write failed")
}
