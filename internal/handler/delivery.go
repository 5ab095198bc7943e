package handler

import "net/http"

// ListNearbyStores handles GET /stores/nearby/{postalCode}.
// Every store within 100 km, with road distance and duration, on one page.
func (s *Server) ListNearbyStores(w http.ResponseWriter, r *http.Request) {
	code, ok := s.bindPostalCode(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, requestBody(invalidPostalCodeMessage))
		return
	}

	nearby, err := s.delivery.ListNearby(r.Context(), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nearbyToResponse(nearby))
}

// QuoteDelivery handles GET /stores/delivery/{postalCode}.
func (s *Server) QuoteDelivery(w http.ResponseWriter, r *http.Request) {
	code, ok := s.bindPostalCode(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, requestBody(invalidPostalCodeMessage))
		return
	}

	quote, err := s.delivery.QuoteNearestStore(r.Context(), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteToResponse(quote))
}
