package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/httpx"
	"github.com/wudworks/fitquote/internal/services"
	"github.com/wudworks/fitquote/validation"
)

type QuotationHandler struct {
	DB  *gorm.DB
	Svc *services.QuotationService
}

func NewQuotationHandler(db *gorm.DB, svc *services.QuotationService) *QuotationHandler {
	return &QuotationHandler{DB: db, Svc: svc}
}

// List: GET /quotations
func (h *QuotationHandler) List(w http.ResponseWriter, _ *http.Request) {
	qs, err := h.Svc.List()
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_quotations", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": qs, "total": len(qs)})
}

// Create: POST /quotations
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.QuotationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	if in.PackageID == 0 {
		v["packageId"] = "required"
	}
	if in.ClientID == 0 {
		v["clientId"] = "required"
	}
	validation.NonNegativeFloat("discount", in.Discount, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	q, err := h.Svc.Create(in)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

// Get: GET /quotations/get?id=...
func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q, err := h.Svc.Get(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Update: POST /quotations/update?id=... updates terms only; never re-prices the
// referenced package.
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch services.QuotationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	q, err := h.Svc.Update(id, patch)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// Delete: POST /quotations/delete?id=...
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_quotation", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
