package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/auth"
	"github.com/wudworks/fitquote/httpx"
	"github.com/wudworks/fitquote/internal/compute"
	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/ordering"
	"github.com/wudworks/fitquote/internal/store"
	"github.com/wudworks/fitquote/validation"
)

// PackageHandler covers package CRUD plus the section snapshot endpoints.
// Section saves are whole-collection: the handler recomputes every derived
// field and repairs ranks before the snapshot reaches the store, so the
// same totals the editor showed are what lands in the database.
type PackageHandler struct {
	DB       *gorm.DB
	Sections store.SectionStore
}

func NewPackageHandler(db *gorm.DB, sections store.SectionStore) *PackageHandler {
	return &PackageHandler{DB: db, Sections: sections}
}

// List: GET /packages
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	var pkgs []models.Package
	if err := h.DB.Order("id desc").Find(&pkgs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_packages", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": pkgs, "total": len(pkgs)})
}

// Create: POST /packages
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	pkg := models.Package{Name: req.Name, UserID: uid}
	if err := h.DB.Create(&pkg).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_package", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, pkg)
}

// Update: POST /packages/update?id=...
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var pkg models.Package
	if err := h.DB.First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_package", nil)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	pkg.Name = req.Name
	if err := h.DB.Save(&pkg).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_package", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, pkg)
}

// Delete: POST /packages/delete?id=... removes the package with its
// sections and items.
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id IN (?)",
			tx.Model(&models.Section{}).Select("id").Where("package_id = ?", id),
		).Delete(&models.WorkItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("package_id = ?", id).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Package{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_package", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// LoadSections: GET /packages/sections?id=... returns the full ordered
// snapshot plus current totals.
func (h *PackageHandler) LoadSections(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if !h.packageExists(w, id) {
		return
	}
	sections, err := h.Sections.LoadSections(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sectionsPayload(sections))
}

// SaveSections: PUT /packages/sections?id=... replaces the package's
// whole section collection. Derived fields are recomputed and ranks
// renumbered server-side before the snapshot persists; an invalid section
// rejects the entire save so a bad state is never stored.
func (h *PackageHandler) SaveSections(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if !h.packageExists(w, id) {
		return
	}
	var sections []models.Section
	if err := json.NewDecoder(r.Body).Decode(&sections); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	for i := range sections {
		v := validation.Violations{}
		validation.Required("name", sections[i].Name, v)
		validation.OneOf("type", sections[i].Type, []string{models.SectionTypeSquareNet, models.SectionTypeDescription}, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
	}
	ordering.Renumber(sections, func(s *models.Section, o int) { s.Order = o })
	for i := range sections {
		compute.Recalculate(&sections[i])
		ordering.Renumber(sections[i].Items, func(it *models.WorkItem, o int) { it.Order = o })
	}
	if err := h.Sections.SaveSections(r.Context(), id, sections); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_sections", nil)
		return
	}
	saved, err := h.Sections.LoadSections(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, sectionsPayload(saved))
}

// MoveSection: POST /packages/sections/move?id=&section=&direction=up|down
// An out-of-bounds move is a no-op and returns the unchanged snapshot.
func (h *PackageHandler) MoveSection(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sectionID, ok := uintParam(w, r, "section")
	if !ok {
		return
	}
	dir := r.URL.Query().Get("direction")
	if dir != "up" && dir != "down" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_direction", nil)
		return
	}
	if !h.packageExists(w, id) {
		return
	}
	sections, err := h.Sections.LoadSections(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
		return
	}
	idx := -1
	for i := range sections {
		if sections[i].ID == sectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	setOrder := func(s *models.Section, o int) { s.Order = o }
	var moved bool
	if dir == "up" {
		moved = ordering.MoveUp(sections, idx, setOrder)
	} else {
		moved = ordering.MoveDown(sections, idx, setOrder)
	}
	if moved {
		if err := h.Sections.SaveSections(r.Context(), id, sections); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_sections", nil)
			return
		}
		sections, err = h.Sections.LoadSections(r.Context(), id)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
			return
		}
	}
	payload := sectionsPayload(sections)
	payload["moved"] = moved
	httpx.JSON(w, http.StatusOK, payload)
}

// MoveItem: POST /packages/items/move?id=&section=&item=&direction=up|down
func (h *PackageHandler) MoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	sectionID, ok := uintParam(w, r, "section")
	if !ok {
		return
	}
	itemID, ok := uintParam(w, r, "item")
	if !ok {
		return
	}
	dir := r.URL.Query().Get("direction")
	if dir != "up" && dir != "down" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_direction", nil)
		return
	}
	if !h.packageExists(w, id) {
		return
	}
	sections, err := h.Sections.LoadSections(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
		return
	}
	var sec *models.Section
	for i := range sections {
		if sections[i].ID == sectionID {
			sec = &sections[i]
			break
		}
	}
	if sec == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	idx := -1
	for i := range sec.Items {
		if sec.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	setOrder := func(it *models.WorkItem, o int) { it.Order = o }
	var moved bool
	if dir == "up" {
		moved = ordering.MoveUp(sec.Items, idx, setOrder)
	} else {
		moved = ordering.MoveDown(sec.Items, idx, setOrder)
	}
	if moved {
		if err := h.Sections.SaveSections(r.Context(), id, sections); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_sections", nil)
			return
		}
		sections, err = h.Sections.LoadSections(r.Context(), id)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
			return
		}
	}
	payload := sectionsPayload(sections)
	payload["moved"] = moved
	httpx.JSON(w, http.StatusOK, payload)
}

func (h *PackageHandler) packageExists(w http.ResponseWriter, id uint) bool {
	var pkg models.Package
	if err := h.DB.Select("id").First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return false
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_package", nil)
		return false
	}
	return true
}

func sectionsPayload(sections []models.Section) map[string]any {
	totals := make([]float64, len(sections))
	for i := range sections {
		totals[i] = compute.SectionTotal(sections[i])
	}
	return map[string]any{
		"sections":      sections,
		"sectionTotals": totals,
		"packageTotal":  compute.PackageTotal(sections),
		"packageArea":   compute.PackageArea(sections),
	}
}
