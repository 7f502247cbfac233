package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/services"
)

func TestLeadCreateDefaultsStatus(t *testing.T) {
	db := openTestDB(t)
	h := NewLeadHandler(db, services.NewLeadService(db))

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"name": "Kiran S", "source": "referral"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var lead models.Lead
	if err := json.Unmarshal(rec.Body.Bytes(), &lead); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lead.Status != models.LeadStatusNew {
		t.Fatalf("status = %q, want new", lead.Status)
	}
}

func TestLeadListFilterByStatus(t *testing.T) {
	db := openTestDB(t)
	h := NewLeadHandler(db, services.NewLeadService(db))
	for _, l := range []models.Lead{
		{Name: "A", Status: models.LeadStatusNew},
		{Name: "B", Status: models.LeadStatusContacted},
		{Name: "C", Status: models.LeadStatusNew},
	} {
		if err := db.Create(&l).Error; err != nil {
			t.Fatalf("seed lead: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/leads?status=new", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	var resp struct {
		Items []models.Lead `json:"items"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
}

func TestLeadConvertEndpoint(t *testing.T) {
	db := openTestDB(t)
	h := NewLeadHandler(db, services.NewLeadService(db))
	lead := models.Lead{Name: "Kiran S", Phone: "98450 11111", Status: models.LeadStatusNew}
	if err := db.Create(&lead).Error; err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	url := fmt.Sprintf("/leads/convert?id=%d", lead.ID)
	req := httptest.NewRequest(http.MethodPost, url, nil)
	rec := httptest.NewRecorder()
	h.Convert(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var client models.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &client); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if client.Name != "Kiran S" || client.Phone != "98450 11111" {
		t.Fatalf("client = %+v", client)
	}

	// Second conversion of the same lead is rejected.
	rec = httptest.NewRecorder()
	h.Convert(rec, httptest.NewRequest(http.MethodPost, url, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("double convert status = %d, want 400", rec.Code)
	}
}
