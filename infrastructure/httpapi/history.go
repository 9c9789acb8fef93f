// Package httpapi exposes the read-only history endpoints.
package httpapi

import (
	"chat-relay/domain"
	"chat-relay/services"
	"encoding/json"
	"log/slog"
	"net/http"
)

type HistoryHandler struct {
	log     *slog.Logger
	service services.IRelayService
}

func NewHistoryHandler(log *slog.Logger, service services.IRelayService) *HistoryHandler {
	return &HistoryHandler{log: log, service: service}
}

// Register mounts the query surface on the mux.
func (h *HistoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/messages/{room}", h.roomHistory)
	mux.HandleFunc("GET /api/private/{userA}/{userB}", h.privateHistory)
}

// roomHistory returns the oldest records of a room, ascending createdAt.
// An unknown room is an empty list, not an error.
func (h *HistoryHandler) roomHistory(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")

	messages, err := h.service.RoomHistory(r.Context(), room)
	if err != nil {
		h.log.Error("Room history query failed", "room", room, "error", err)
		writeError(w, "Failed to fetch messages")
		return
	}
	writeJSON(w, messages)
}

// privateHistory returns the direct messages between two identities,
// matching either direction of sender and recipient.
func (h *HistoryHandler) privateHistory(w http.ResponseWriter, r *http.Request) {
	userA := r.PathValue("userA")
	userB := r.PathValue("userB")

	messages, err := h.service.PrivateHistory(r.Context(), userA, userB)
	if err != nil {
		h.log.Error("Private history query failed",
			"user_a", userA, "user_b", userB, "error", err)
		writeError(w, "Failed to fetch private messages")
		return
	}
	writeJSON(w, messages)
}

func writeJSON(w http.ResponseWriter, messages []domain.Message) {
	if messages == nil {
		messages = []domain.Message{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(messages)
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
