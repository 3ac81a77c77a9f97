package inventory

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/medibridge/internal/kvstore"
	"github.com/georgemunganga/medibridge/internal/modules/auth"
	"github.com/georgemunganga/medibridge/internal/modules/user"
)

// Handler exposes the seller inventory endpoints.
type Handler struct {
	service      Service
	authenticate func(http.Handler) http.Handler
}

// NewHandler wires the handler behind authenticate, which must place
// auth.Claims in the request context.
func NewHandler(service Service, authenticate func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, authenticate: authenticate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(h.authenticate, auth.RequireRole(user.RoleSeller))

		r.Get("/medicines", h.listMedicines) // ?q=&category=&expiry=&price=&sort=&order=
		r.Post("/medicines", h.createMedicine)
		r.Get("/medicines/{id}", h.getMedicine)
		r.Put("/medicines/{id}", h.updateMedicine)
		r.Delete("/medicines/{id}", h.deleteMedicine) // ?confirm=true

		r.Get("/summary", h.summary)
		r.Get("/expiry-report", h.expiryReport)
	})
}

func sellerID(r *http.Request) string {
	claims, _ := auth.ClaimsFromContext(r.Context())
	return claims.Subject
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	filter, sort, err := ParseQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	medicines, err := h.service.List(r.Context(), sellerID(r), filter, sort)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req MedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m, err := h.service.Create(r.Context(), sellerID(r), req)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusCreated, m)
}

func (h *Handler) getMedicine(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), MedicineID(chi.URLParam(r, "id")))
	if err == nil && m.SellerID != sellerID(r) {
		err = ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, m)
}

func (h *Handler) updateMedicine(w http.ResponseWriter, r *http.Request) {
	var req MedicineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	m, found, err := h.service.Update(r.Context(), sellerID(r), MedicineID(chi.URLParam(r, "id")), req)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, ErrNotFound)
		return
	}
	respond(w, http.StatusOK, m)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	if err := h.service.Delete(r.Context(), sellerID(r), MedicineID(chi.URLParam(r, "id")), confirmed); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), sellerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, sum)
}

func (h *Handler) expiryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ExpiryReport(r.Context(), sellerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, report)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrInvalidMedicine), errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrConfirmationRequired):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, kvstore.ErrCorrupt):
		status = http.StatusInternalServerError
	}
	respond(w, status, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
