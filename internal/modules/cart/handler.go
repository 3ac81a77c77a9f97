package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/medibridge/internal/modules/inventory"
)

// Handler exposes session cart endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/carts/{session}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addItem)
		r.Put("/items/{id}", h.setQuantity)
		r.Delete("/items/{id}", h.removeItem)
	})
}

// addItemRequest names the medicine to add. Any other fields a client sends,
// such as name or price, are ignored.
type addItemRequest struct {
	ID inventory.MedicineID `json:"id"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ID == "" {
		respond(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}
	c, err := h.service.AddOrIncrement(r.Context(), chi.URLParam(r, "session"), req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "session"),
		inventory.MedicineID(chi.URLParam(r, "id")), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Remove(r.Context(), chi.URLParam(r, "session"), inventory.MedicineID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, c.View())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context(), chi.URLParam(r, "session")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidSession):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnknownMedicine), errors.Is(err, ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrExpired):
		status = http.StatusConflict
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
