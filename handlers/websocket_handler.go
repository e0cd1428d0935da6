package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/bracket-console/brackets"
	"github.com/Dosada05/bracket-console/services"
)

type WebSocketHandler struct {
	hub            *brackets.Hub
	bracketService services.BracketService
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler accepts connections only from allowedOrigins; an empty
// list allows any origin (local development).
func NewWebSocketHandler(hub *brackets.Hub, bracketService services.BracketService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:            hub,
		bracketService: bracketService,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// ServeWs обрабатывает WebSocket запросы для конкретного турнира.
// Клиент должен подключаться к /ws/tournaments/{tournamentID}
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, так что здесь просто логируем.
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	roomID := brackets.RoomForTournament(tournamentID)
	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: roomID,
	}
	if !h.hub.Join(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client joined", slog.String("room", roomID))

	// Новому клиенту сразу отправляем текущую сетку, если она уже построена.
	if snapshot, ok := h.bracketService.Snapshot(tournamentID); ok {
		greeting, err := json.Marshal(brackets.WebSocketMessage{
			Type:    brackets.MessageBracketUpdated,
			Payload: snapshot,
			RoomID:  roomID,
		})
		if err != nil {
			h.logger.Error("failed to encode websocket greeting", slog.String("room", roomID), slog.Any("error", err))
			return
		}
		client.TrySend(greeting)
	}
}
