// Package domain contains the core data types for the store locator.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, upstream, service, handler).
package domain

import "time"

// StoreType discriminates which delivery pricing strategy applies to a store.
type StoreType string

const (
	// StoreTypePDV is a pickup/delivery point offering local motoboy delivery.
	StoreTypePDV StoreType = "PDV"
	// StoreTypeLoja is a store fulfilled through carrier shipping.
	StoreTypeLoja StoreType = "LOJA"
)

// Valid reports whether t is one of the known store types.
func (t StoreType) Valid() bool {
	return t == StoreTypePDV || t == StoreTypeLoja
}

// DefaultCountry is applied to stores saved without a country.
const DefaultCountry = "Brasil"

// Store is a physical store in the catalog.
//
// Location is derived from Latitude/Longitude whenever a store is written
// (see SyncLocation); readers never recompute it.
type Store struct {
	StoreID            string
	StoreName          string
	TakeOutInStore     bool
	ShippingTimeInDays *int
	Latitude           float64
	Longitude          float64
	Location           GeoPoint
	Address1           string
	Address2           string
	Address3           string
	City               string
	District           string
	State              string
	Country            string
	PostalCode         string
	Type               StoreType
	TelephoneNumber    string
	EmailAddress       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SyncLocation re-derives Location from Latitude and Longitude.
// Every write path calls it before persisting.
func (s *Store) SyncLocation() {
	s.Location = NewGeoPoint(s.Latitude, s.Longitude)
}

// Coordinates returns the store position as lat/lng.
func (s Store) Coordinates() Coordinates {
	return Coordinates{Lat: s.Latitude, Lng: s.Longitude}
}

// StoreFilter narrows catalog listings. Zero value matches every store.
type StoreFilter struct {
	State string
}

// StorePage is one page of a catalog listing.
type StorePage struct {
	Stores []Store
	Page   Page
}
