package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wudworks/fitquote/auth"
	appdb "github.com/wudworks/fitquote/internal/db"
	"github.com/wudworks/fitquote/internal/models"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:router_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := appdb.AutoMigrate(dbi); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(dbi), dbi
}

func sessionCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	auth.CreateSession(rec, userID)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := setupRouter(t)
	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"ok"`) {
			t.Fatalf("%s: body = %s", path, rr.Body.String())
		}
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app, _ := setupRouter(t)
	for _, path := range []string{"/packages", "/clients", "/leads", "/quotations", "/quotations/pdf?id=1"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", path, rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
			t.Fatalf("%s: content type = %q, want JSON envelope", path, ct)
		}
	}
}

func TestStaleSessionRejected(t *testing.T) {
	app, _ := setupRouter(t)
	// Valid signature, but the user does not exist anymore.
	req := httptest.NewRequest(http.MethodGet, "/packages", nil)
	req.AddCookie(sessionCookie(t, 777))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestQuotationFlowE2E(t *testing.T) {
	app, dbi := setupRouter(t)
	u := models.User{Name: "Ravi", Email: "ravi@example.com", Password: "hash", Role: "sales"}
	if err := dbi.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	sess := sessionCookie(t, u.ID)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.AddCookie(sess)
		rr := httptest.NewRecorder()
		app.ServeHTTP(rr, req)
		return rr
	}

	// Create a package.
	rr := do(http.MethodPost, "/packages", `{"name": "2BHK Premium"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create package: %d %s", rr.Code, rr.Body.String())
	}
	var pkg models.Package
	if err := json.Unmarshal(rr.Body.Bytes(), &pkg); err != nil {
		t.Fatalf("decode package: %v", err)
	}
	if pkg.UserID != u.ID {
		t.Fatalf("package owner = %d, want %d", pkg.UserID, u.ID)
	}

	// Fill its sections.
	sections := `[
		{"name": "Living Room", "type": "squareNet", "items": [
			{"item": "TV unit", "nos": 2, "width": 3, "length": 4, "pricePerSqFt": 50}
		]},
		{"name": "Kitchen", "type": "description", "items": [
			{"carpentryWork": "Chimney ducting", "price": 300}
		]}
	]`
	rr = do(http.MethodPut, fmt.Sprintf("/packages/sections?id=%d", pkg.ID), sections)
	if rr.Code != http.StatusOK {
		t.Fatalf("save sections: %d %s", rr.Code, rr.Body.String())
	}
	var snap struct {
		PackageTotal float64 `json:"packageTotal"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.PackageTotal != 1500 {
		t.Fatalf("packageTotal = %v, want 1500", snap.PackageTotal)
	}

	// Create the client and the quotation.
	rr = do(http.MethodPost, "/clients", `{"name": "Asha Rao", "projectName": "Lakeview 402"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", rr.Code, rr.Body.String())
	}
	var client models.Client
	if err := json.Unmarshal(rr.Body.Bytes(), &client); err != nil {
		t.Fatalf("decode client: %v", err)
	}

	qBody := fmt.Sprintf(`{"packageId": %d, "clientId": %d, "amount": 1500, "discount": 100, "projectCode": "LV-402"}`, pkg.ID, client.ID)
	rr = do(http.MethodPost, "/quotations", qBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create quotation: %d %s", rr.Code, rr.Body.String())
	}
	var q models.Quotation
	if err := json.Unmarshal(rr.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode quotation: %v", err)
	}
	if q.DiscountedPrice != 1400 {
		t.Fatalf("discountedPrice = %v, want 1400", q.DiscountedPrice)
	}

	// Download the rendered documents.
	rr = do(http.MethodGet, fmt.Sprintf("/quotations/pdf?id=%d", q.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf: %d %s", rr.Code, rr.Body.String())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("pdf body is not a PDF")
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), "Asha_Rao_2BHK_Premium_LV_402.pdf") {
		t.Fatalf("content disposition = %q", rr.Header().Get("Content-Disposition"))
	}

	rr = do(http.MethodGet, fmt.Sprintf("/quotations/xlsx?id=%d", q.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("xlsx: %d %s", rr.Code, rr.Body.String())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")) {
		t.Fatal("xlsx body is not a workbook")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	app, dbi := setupRouter(t)
	u := models.User{Name: "Ravi", Email: "r@example.com", Password: "hash"}
	if err := dbi.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, "/packages/update?id=1", nil)
	req.AddCookie(sessionCookie(t, u.ID))
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rr.Code)
	}
	if rr.Header().Get("Allow") != "POST" {
		t.Fatalf("Allow = %q", rr.Header().Get("Allow"))
	}
}
