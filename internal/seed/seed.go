// Package seed loads store records from a YAML file and saves them into the
// catalog through the store service.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/storefinder/backend/internal/domain"
)

// record is one store as written in the seed file.
type record struct {
	StoreID            string  `yaml:"storeID"`
	StoreName          string  `yaml:"storeName"`
	TakeOutInStore     bool    `yaml:"takeOutInStore"`
	ShippingTimeInDays *int    `yaml:"shippingTimeInDays"`
	Latitude           float64 `yaml:"latitude"`
	Longitude          float64 `yaml:"longitude"`
	Address1           string  `yaml:"address1"`
	Address2           string  `yaml:"address2"`
	Address3           string  `yaml:"address3"`
	City               string  `yaml:"city"`
	District           string  `yaml:"district"`
	State              string  `yaml:"state"`
	Country            string  `yaml:"country"`
	PostalCode         string  `yaml:"postalCode"`
	Type               string  `yaml:"type"`
	TelephoneNumber    string  `yaml:"telephoneNumber"`
	EmailAddress       string  `yaml:"emailAddress"`
}

type file struct {
	Stores []record `yaml:"stores"`
}

// Decode reads a seed document of the form
//
//	stores:
//	  - storeID: "1"
//	    storeName: Loja Paulista
//	    ...
//
// Unknown keys are rejected so typos surface instead of silently dropping data.
func Decode(r io.Reader) ([]domain.Store, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed.Decode: empty document")
		}
		return nil, fmt.Errorf("seed.Decode: %w", err)
	}

	stores := make([]domain.Store, len(f.Stores))
	for i, rec := range f.Stores {
		stores[i] = domain.Store{
			StoreID:            rec.StoreID,
			StoreName:          rec.StoreName,
			TakeOutInStore:     rec.TakeOutInStore,
			ShippingTimeInDays: rec.ShippingTimeInDays,
			Latitude:           rec.Latitude,
			Longitude:          rec.Longitude,
			Address1:           rec.Address1,
			Address2:           rec.Address2,
			Address3:           rec.Address3,
			City:               rec.City,
			District:           rec.District,
			State:              rec.State,
			Country:            rec.Country,
			PostalCode:         rec.PostalCode,
			Type:               domain.StoreType(rec.Type),
			TelephoneNumber:    rec.TelephoneNumber,
			EmailAddress:       rec.EmailAddress,
		}
	}
	return stores, nil
}

// Saver persists one store. Implemented by service.StoreService.
type Saver interface {
	Save(ctx context.Context, store domain.Store) (domain.Store, error)
}

// Result summarizes a seed run.
type Result struct {
	Saved  int
	Failed int
}

// Run saves every store, logging each failure and continuing with the rest.
// It stops early only when ctx is done.
func Run(ctx context.Context, saver Saver, stores []domain.Store, log *slog.Logger) (Result, error) {
	var res Result
	for i, st := range stores {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("seed.Run: stopped after %d of %d stores: %w", i, len(stores), err)
		}
		saved, err := saver.Save(ctx, st)
		if err != nil {
			res.Failed++
			log.ErrorContext(ctx, "store not saved", "index", i, "store_id", st.StoreID, "error", err)
			continue
		}
		res.Saved++
		log.DebugContext(ctx, "store saved", "store_id", saved.StoreID, "type", saved.Type)
	}
	return res, nil
}
