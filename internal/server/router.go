package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/wudworks/fitquote/auth"
	"github.com/wudworks/fitquote/httpx"
	"github.com/wudworks/fitquote/internal/handlers"
	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/services"
	"github.com/wudworks/fitquote/internal/store"
)

// New constructs the root http.Handler with all routes and middleware.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth re-checks that the session's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	sections := store.NewGormStore(db)

	lh := handlers.NewLeadHandler(db, services.NewLeadService(db))
	mux.Handle("/leads", protect(listCreate(lh.List, lh.Create)))
	mux.Handle("/leads/update", protect(postOnly(lh.Update)))
	mux.Handle("/leads/delete", protect(postOnly(lh.Delete)))
	mux.Handle("/leads/convert", protect(postOnly(lh.Convert)))

	ch := handlers.NewClientHandler(db)
	mux.Handle("/clients", protect(listCreate(ch.List, ch.Create)))
	mux.Handle("/clients/update", protect(postOnly(ch.Update)))
	mux.Handle("/clients/delete", protect(postOnly(ch.Delete)))

	ph := handlers.NewPackageHandler(db, sections)
	mux.Handle("/packages", protect(listCreate(ph.List, ph.Create)))
	mux.Handle("/packages/update", protect(postOnly(ph.Update)))
	mux.Handle("/packages/delete", protect(postOnly(ph.Delete)))
	mux.Handle("/packages/sections", protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.LoadSections(w, r)
		case http.MethodPut:
			ph.SaveSections(w, r)
		default:
			w.Header().Set("Allow", "GET,PUT")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})))
	mux.Handle("/packages/sections/move", protect(postOnly(ph.MoveSection)))
	mux.Handle("/packages/items/move", protect(postOnly(ph.MoveItem)))

	qh := handlers.NewQuotationHandler(db, services.NewQuotationService(db))
	mux.Handle("/quotations", protect(listCreate(qh.List, qh.Create)))
	mux.Handle("/quotations/get", protect(http.HandlerFunc(qh.Get)))
	mux.Handle("/quotations/update", protect(postOnly(qh.Update)))
	mux.Handle("/quotations/delete", protect(postOnly(qh.Delete)))

	dh := handlers.NewDocumentHandler(db, sections)
	mux.Handle("/quotations/pdf", protect(http.HandlerFunc(dh.PDF)))
	mux.Handle("/quotations/xlsx", protect(http.HandlerFunc(dh.XLSX)))

	return withRecover(withLogging(mux))
}

func protect(next http.Handler) http.Handler {
	return auth.Middleware(auth.RequireAuth(next))
}

func listCreate(list, create http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list(w, r)
		case http.MethodPost:
			create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
}

func postOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		h(w, r)
	})
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
