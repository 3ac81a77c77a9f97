package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/medibridge/internal/modules/auth"
	"github.com/georgemunganga/medibridge/internal/modules/user"
)

// fakeAuth trusts the X-Test-Seller header instead of a bearer token.
func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seller := r.Header.Get("X-Test-Seller")
		if seller == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		role := user.RoleSeller
		if seller == "patient" {
			role = user.RolePatient
		}
		claims := &auth.Claims{Role: role}
		claims.Subject = seller
		next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	})
}

func newTestRouter(t *testing.T) *chi.Mux {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, fakeAuth).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, seller string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if seller != "" {
		req.Header.Set("X-Test-Seller", seller)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerMedicineLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/api/v1/inventory/medicines", sellerA, request("Paracetamol", 15, 40, "2026-12-31"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/v1/inventory/medicines/" + string(created.ID)

	rec = do(r, http.MethodGet, path, sellerA, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, path, sellerB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodPut, path, sellerA, request("Paracetamol 1g", 20, 30, "2027-01-31"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Paracetamol 1g")

	rec = do(r, http.MethodPut, "/api/v1/inventory/medicines/missing", sellerA, request("X", 1, 1, "2027-01-31"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(r, http.MethodGet, "/api/v1/inventory/medicines?sort=name", sellerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = do(r, http.MethodDelete, path, sellerA, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(r, http.MethodDelete, path+"?confirm=true", sellerA, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(r, http.MethodGet, path, sellerA, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRejections(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/inventory/medicines", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/v1/inventory/medicines", "patient", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/api/v1/inventory/medicines?sort=colour", sellerA, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/inventory/medicines", sellerA, request("", 1, 1, "2026-12-31")).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/medicines", bytes.NewBufferString("{"))
	req.Header.Set("X-Test-Seller", sellerA)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSummaryAndExpiryReport(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/inventory/medicines", sellerA, request("Soon", 5, 3, "2026-02-01")).Code)

	rec := do(r, http.MethodGet, "/api/v1/inventory/summary", sellerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, Summary{Total: 1, LowStock: 1, ExpiringSoon: 1}, sum)

	rec = do(r, http.MethodGet, "/api/v1/inventory/expiry-report", sellerA, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report ExpiryReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Expiring, 1)
	assert.Empty(t, report.Expired)
}

func TestHandlerCorruptStorageIsServerError(t *testing.T) {
	svc, store := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, fakeAuth).RegisterRoutes(r)
	require.NoError(t, store.Set(context.Background(), "inventory", []byte("{")))

	assert.Equal(t, http.StatusInternalServerError, do(r, http.MethodGet, "/api/v1/inventory/medicines", sellerA, nil).Code)
}
