package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/clinsa/psicotest-backend/internal/config"
	"github.com/clinsa/psicotest-backend/internal/middleware"
	ws "github.com/clinsa/psicotest-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live assessment events to clinician dashboards.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AlertStream godoc
// WS /ws/v1/psych/stream
// Upgrades to WebSocket and forwards the clinician's PubSub alert channel:
// completion events arrive the moment the worker publishes them, without
// inbox polling.
func (h *WSHandler) AlertStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	psychologistID := claims.UserID
	wsLog := h.log.With().Int("psychologist_id", psychologistID).Logger()
	wsLog.Info().Msg("Psychologist connected")

	channel := config.CacheKey.PsychologistAlertChannel(psychologistID)
	sub := h.rdb.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	// Reader goroutine: consumes client pings and detects close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	events := sub.Channel()
	for {
		select {
		case <-done:
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			err := ws.WriteTyped(conn, ws.AlertMessage{
				Event:   ws.EventAlert,
				Payload: []byte(msg.Payload),
			})
			if err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				return
			}
		}
	}
}
