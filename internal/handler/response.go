package handler

import (
	"net/http"

	"github.com/storefinder/backend/internal/domain"
)

// Response bodies. Field names are the ones the store locator front end
// already consumes, which is why they mix English and Portuguese.

type storeResponse struct {
	StoreID            string          `json:"storeID"`
	StoreName          string          `json:"storeName"`
	TakeOutInStore     bool            `json:"takeOutInStore"`
	ShippingTimeInDays *int            `json:"shippingTimeInDays,omitempty"`
	Latitude           float64         `json:"latitude"`
	Longitude          float64         `json:"longitude"`
	Location           domain.GeoPoint `json:"location"`
	Address1           string          `json:"address1"`
	Address2           string          `json:"address2,omitempty"`
	Address3           string          `json:"address3,omitempty"`
	City               string          `json:"city"`
	District           string          `json:"district"`
	State              string          `json:"state"`
	Country            string          `json:"country"`
	PostalCode         string          `json:"postalCode"`
	Type               string          `json:"type"`
	TelephoneNumber    string          `json:"telephoneNumber,omitempty"`
	EmailAddress       string          `json:"emailAddress,omitempty"`
	Distance           string          `json:"distance,omitempty"`
	Duration           string          `json:"duration,omitempty"`
}

type pageResponse struct {
	Limit       int   `json:"limit"`
	Offset      int   `json:"offset"`
	Total       int64 `json:"total"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

type storeListResponse struct {
	Stores []storeResponse `json:"stores"`
	pageResponse
	StatusCode int `json:"statusCode"`
}

type deliveryLineResponse struct {
	Prazo             string `json:"prazo"`
	CodProdutoAgencia string `json:"codProdutoAgencia,omitempty"`
	Price             string `json:"price"`
	Description       string `json:"description"`
}

// deliveryStoreResponse carries the store's public fields; coordinates are
// only exposed through the pins.
type deliveryStoreResponse struct {
	StoreID            string                 `json:"storeID"`
	StoreName          string                 `json:"storeName"`
	TakeOutInStore     bool                   `json:"takeOutInStore"`
	ShippingTimeInDays *int                   `json:"shippingTimeInDays,omitempty"`
	Address1           string                 `json:"address1"`
	Address2           string                 `json:"address2,omitempty"`
	Address3           string                 `json:"address3,omitempty"`
	City               string                 `json:"city"`
	District           string                 `json:"district"`
	State              string                 `json:"state"`
	Country            string                 `json:"country"`
	PostalCode         string                 `json:"postalCode"`
	Type               string                 `json:"type"`
	TelephoneNumber    string                 `json:"telephoneNumber,omitempty"`
	EmailAddress       string                 `json:"emailAddress,omitempty"`
	Distance           string                 `json:"distance"`
	DeliveryAddress    string                 `json:"deliveryAddress"`
	Value              []deliveryLineResponse `json:"value"`
}

type pinResponse struct {
	Position domain.Coordinates `json:"position"`
	Title    string             `json:"title"`
}

type deliveryResponse struct {
	Stores []deliveryStoreResponse `json:"stores"`
	Pins   []pinResponse           `json:"pins"`
	pageResponse
	StatusCode int `json:"statusCode"`
}

// --- mapping helpers --------------------------------------------------------

func storeToResponse(st domain.Store) storeResponse {
	return storeResponse{
		StoreID:            st.StoreID,
		StoreName:          st.StoreName,
		TakeOutInStore:     st.TakeOutInStore,
		ShippingTimeInDays: st.ShippingTimeInDays,
		Latitude:           st.Latitude,
		Longitude:          st.Longitude,
		Location:           st.Location,
		Address1:           st.Address1,
		Address2:           st.Address2,
		Address3:           st.Address3,
		City:               st.City,
		District:           st.District,
		State:              st.State,
		Country:            st.Country,
		PostalCode:         st.PostalCode,
		Type:               string(st.Type),
		TelephoneNumber:    st.TelephoneNumber,
		EmailAddress:       st.EmailAddress,
	}
}

func pageToResponse(p domain.Page) pageResponse {
	return pageResponse{
		Limit:       p.Limit,
		Offset:      p.Offset,
		Total:       p.Total,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
}

func storePageToResponse(page domain.StorePage) storeListResponse {
	stores := make([]storeResponse, len(page.Stores))
	for i, st := range page.Stores {
		stores[i] = storeToResponse(st)
	}
	return storeListResponse{Stores: stores, pageResponse: pageToResponse(page.Page), StatusCode: http.StatusOK}
}

// nearbyToResponse lists every nearby store on a single page.
func nearbyToResponse(nearby []domain.NearbyStore) storeListResponse {
	stores := make([]storeResponse, len(nearby))
	for i, ns := range nearby {
		stores[i] = storeToResponse(ns.Store)
		stores[i].Distance = ns.Distance
		stores[i].Duration = ns.Duration
	}
	n := len(nearby)
	page := domain.NewPage(int64(n), domain.PageParams{Offset: 0, Limit: n})
	return storeListResponse{Stores: stores, pageResponse: pageToResponse(page), StatusCode: http.StatusOK}
}

func quoteToResponse(q domain.DeliveryQuote) deliveryResponse {
	lines := make([]deliveryLineResponse, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = deliveryLineResponse{
			Prazo:             l.LeadTimeLabel,
			CodProdutoAgencia: l.ReferenceCode,
			Price:             l.Price,
			Description:       l.Description,
		}
	}
	pins := make([]pinResponse, len(q.Pins))
	for i, p := range q.Pins {
		pins[i] = pinResponse{Position: p.Position, Title: p.Title}
	}

	st := q.Store
	return deliveryResponse{
		Stores: []deliveryStoreResponse{{
			StoreID:            st.StoreID,
			StoreName:          st.StoreName,
			TakeOutInStore:     st.TakeOutInStore,
			ShippingTimeInDays: st.ShippingTimeInDays,
			Address1:           st.Address1,
			Address2:           st.Address2,
			Address3:           st.Address3,
			City:               st.City,
			District:           st.District,
			State:              st.State,
			Country:            st.Country,
			PostalCode:         st.PostalCode,
			Type:               string(st.Type),
			TelephoneNumber:    st.TelephoneNumber,
			EmailAddress:       st.EmailAddress,
			Distance:           q.Distance,
			DeliveryAddress:    q.DeliveryAddress,
			Value:              lines,
		}},
		Pins:         pins,
		pageResponse: pageToResponse(q.Page),
		StatusCode:   http.StatusOK,
	}
}
