package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/pickuphub/pickuphub/brackets"
	"github.com/pickuphub/pickuphub/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins before exposing this endpoint publicly.
		return true
	},
}

// WebSocketHandler streams live bracket updates for a tournament.
// Clients connect to /ws/tournaments/{tournamentID}; the room ID is the
// tournament ID.
type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	logger            *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, tournamentService services.TournamentService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
		logger:            logger,
	}
}

func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		http.Error(w, "missing tournamentID", http.StatusBadRequest)
		return
	}

	if _, err := h.tournamentService.GetTournamentByID(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "tournament_id", tournamentID, "error", err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: tournamentID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
