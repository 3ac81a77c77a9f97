package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Responder answers one chat message. *Relay satisfies it.
type Responder interface {
	Respond(ctx context.Context, message string) string
}

// Handler exposes the stateless HTTP chat endpoint.
type Handler struct{ relay Responder }

func NewHandler(relay Responder) *Handler { return &Handler{relay: relay} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/chat", h.chat)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	respond(w, http.StatusOK, chatResponse{Response: h.relay.Respond(r.Context(), req.Message)})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
