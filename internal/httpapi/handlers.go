package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/LavishGent/productcache/internal/types"
)

const (
	readUnavailable  = "Database unavailable"
	writeUnavailable = "Primary database unavailable"

	maxBodyBytes = 1 << 20
)

type handlers struct {
	catalog Catalog
	logger  *slog.Logger
}

func (h *handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		h.logFailure(r, "get", id, err)
		writeCatalogError(w, err, readUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handlers) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateStruct(req); err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	product, err := h.catalog.Create(r.Context(), req.toNewProduct())
	if err != nil {
		h.logFailure(r, "create", 0, err)
		writeCatalogError(w, err, writeUnavailable)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *handlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validateStruct(req); err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	product, err := h.catalog.Update(r.Context(), id, req.toPatch())
	if err != nil {
		h.logFailure(r, "update", id, err)
		writeCatalogError(w, err, writeUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *handlers) liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readiness reports 503 only when the primary is down; a degraded
// service still serves traffic.
func (h *handlers) readiness(w http.ResponseWriter, r *http.Request) {
	report := h.catalog.Health(r.Context())
	status := http.StatusOK
	if report.Status == types.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// logFailure logs failures that are not a normal client outcome.
func (h *handlers) logFailure(r *http.Request, op string, id int64, err error) {
	if types.IsNotFound(err) || types.IsBadRequest(err) {
		return
	}
	h.logger.Warn("Catalog operation failed",
		"operation", op,
		"id", id,
		"error", err,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusUnprocessableEntity, "validation_error", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusUnprocessableEntity, "invalid_json", err.Error())
		return false
	}
	return true
}
