package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/httpx"
	"github.com/wudworks/fitquote/internal/compute"
	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/pdfgen"
	"github.com/wudworks/fitquote/internal/store"
	"github.com/wudworks/fitquote/internal/xlsxgen"
)

const dateLayout = "02 Jan 2006"

// DocumentHandler turns a quotation into downloadable output. Resolution of
// the quotation, its package, and its client happens before any body byte
// is written: a missing reference is a clean 404, never a truncated file.
type DocumentHandler struct {
	DB       *gorm.DB
	Sections store.SectionStore
}

func NewDocumentHandler(db *gorm.DB, sections store.SectionStore) *DocumentHandler {
	return &DocumentHandler{DB: db, Sections: sections}
}

// PDF: GET /quotations/pdf?id=...
func (h *DocumentHandler) PDF(w http.ResponseWriter, r *http.Request) {
	q, client, pkg, sections, ok := h.resolve(w, r)
	if !ok {
		return
	}
	data := pdfgen.Data{
		Title:           "Quotation",
		ClientName:      client.Name,
		ProjectName:     client.ProjectName,
		PackageName:     pkg.Name,
		Area:            q.Area,
		Amount:          q.Amount,
		Discount:        q.Discount,
		DiscountedPrice: q.DiscountedPrice,
		ValidFrom:       q.ValidFrom.Format(dateLayout),
		ValidTo:         q.ValidTo.Format(dateLayout),
		SalesPerson:     q.SalesPerson,
		Sections:        sections,
	}
	out, err := pdfgen.QuotationPDF(data)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	httpx.SetDownloadHeaders(w, "application/pdf", documentFilename(client, pkg, q, "pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// XLSX: GET /quotations/xlsx?id=...
func (h *DocumentHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	q, client, pkg, sections, ok := h.resolve(w, r)
	if !ok {
		return
	}
	out, err := xlsxgen.QuotationXLSX(pkg.Name, sections)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "xlsx_generation_failed", nil)
		return
	}
	httpx.SetDownloadHeaders(w,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		documentFilename(client, pkg, q, "xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// resolve loads the quotation and both of its references, and re-derives
// the section snapshot's computed fields so the document shows exactly what
// the editor's formulas produce.
func (h *DocumentHandler) resolve(w http.ResponseWriter, r *http.Request) (*models.Quotation, *models.Client, *models.Package, []models.Section, bool) {
	id, ok := idParam(w, r)
	if !ok {
		return nil, nil, nil, nil, false
	}
	var q models.Quotation
	if err := h.DB.First(&q, id).Error; err != nil {
		h.notFoundOr500(w, err, "failed_to_load_quotation")
		return nil, nil, nil, nil, false
	}
	var pkg models.Package
	if err := h.DB.First(&pkg, q.PackageID).Error; err != nil {
		h.notFoundOr500(w, err, "failed_to_load_package")
		return nil, nil, nil, nil, false
	}
	var client models.Client
	if err := h.DB.First(&client, q.ClientID).Error; err != nil {
		h.notFoundOr500(w, err, "failed_to_load_client")
		return nil, nil, nil, nil, false
	}
	sections, err := h.Sections.LoadSections(r.Context(), pkg.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_sections", nil)
		return nil, nil, nil, nil, false
	}
	for i := range sections {
		compute.Recalculate(&sections[i])
	}
	return &q, &client, &pkg, sections, true
}

func (h *DocumentHandler) notFoundOr500(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, code, nil)
}

func documentFilename(client *models.Client, pkg *models.Package, q *models.Quotation, ext string) string {
	return httpx.SanitizeFilenamePart(client.Name) + "_" +
		httpx.SanitizeFilenamePart(pkg.Name) + "_" +
		httpx.SanitizeFilenamePart(q.ProjectCode) + "." + ext
}
