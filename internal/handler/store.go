package handler

import (
	"net/http"
)

// ListStores handles GET /stores.
// Supports ?offset= and ?limit= query parameters (defaults: offset=0, limit=10, max=100).
func (s *Server) ListStores(w http.ResponseWriter, r *http.Request) {
	params, err := s.bindPage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}

	page, err := s.stores.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storePageToResponse(page))
}

// ListStoresByState handles GET /stores/state/{state}.
func (s *Server) ListStoresByState(w http.ResponseWriter, r *http.Request) {
	state, err := pathParam(r, "state")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}
	params, err := s.bindPage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}

	page, err := s.stores.ListByState(r.Context(), state, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storePageToResponse(page))
}

// GetStore handles GET /stores/{storeID}.
func (s *Server) GetStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := pathParam(r, "storeID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, validationBody(err))
		return
	}

	store, err := s.stores.GetByID(r.Context(), storeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, storeToResponse(store))
}
