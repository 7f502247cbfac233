package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/httpx"
	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/services"
	"github.com/wudworks/fitquote/validation"
)

type LeadHandler struct {
	DB  *gorm.DB
	Svc *services.LeadService
}

func NewLeadHandler(db *gorm.DB, svc *services.LeadService) *LeadHandler {
	return &LeadHandler{DB: db, Svc: svc}
}

// List: GET /leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Order("id desc")
	if status := r.URL.Query().Get("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}
	var leads []models.Lead
	if err := dbq.Find(&leads).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_leads", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": leads, "total": len(leads)})
}

// Create: POST /leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", lead.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	lead.ID = 0
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if err := h.DB.Create(&lead).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_lead", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

// Update: POST /leads/update?id=...
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var lead models.Lead
	if err := h.DB.First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_lead", nil)
		return
	}
	var patch struct {
		Name   *string `json:"name"`
		Phone  *string `json:"phone"`
		Email  *string `json:"email"`
		Source *string `json:"source"`
		Status *string `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Source != nil {
		lead.Source = *patch.Source
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.Notes != nil {
		lead.Notes = *patch.Notes
	}
	if err := h.DB.Save(&lead).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_lead", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

// Delete: POST /leads/delete?id=...
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res := h.DB.Delete(&models.Lead{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_lead", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Convert: POST /leads/convert?id=...
func (h *LeadHandler) Convert(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	client, err := h.Svc.Convert(id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "failed_to_convert_lead", map[string]string{"reason": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}
