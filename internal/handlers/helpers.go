package handlers

import (
	"net/http"
	"strconv"

	"github.com/wudworks/fitquote/httpx"
)

// idParam parses the ?id= query parameter shared by the update/delete/get
// endpoints, writing the 400 envelope itself on failure.
func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// uintParam parses an arbitrary positive-integer query parameter.
func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_"+name, nil)
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_"+name, nil)
		return 0, false
	}
	return uint(n), true
}
