package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/storefinder/backend/internal/domain"
)

// Local motoboy delivery, offered by PDV stores.
const (
	localDeliveryPrice       = "R$ 15,00"
	localDeliveryDescription = "Motoboy"

	// localPreparationSeconds is added to travel time for order preparation.
	localPreparationSeconds = 1200
)

// Carrier service descriptions. PAC is the economy service; anything else
// quoted by the carrier is treated as express.
const (
	economyServiceName  = "PAC"
	economyDescription  = "PAC a encomenda econômica dos Correios"
	expressDescFormat   = "%s a encomenda expressa dos Correios"
	carrierLeadTimeForm = "%d dias úteis"
	carrierPricePrefix  = "R$ "
)

// localDeliveryLine prices a PDV delivery from the travel time in seconds.
func localDeliveryLine(travelSeconds int) domain.DeliveryQuoteLine {
	return domain.DeliveryQuoteLine{
		LeadTimeLabel: formatETA(travelSeconds),
		Price:         localDeliveryPrice,
		Description:   localDeliveryDescription,
	}
}

// formatETA rounds travel plus preparation time to whole minutes and
// renders it as "{h}h {m}min", or "{m}min" under one hour.
func formatETA(travelSeconds int) string {
	total := int(math.Round(float64(travelSeconds+localPreparationSeconds) / 60))
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dmin", h, m)
	}
	return fmt.Sprintf("%dmin", m)
}

// carrierLines maps carrier options to quote lines, one per option and in
// the same order. newRef supplies each line's reference code.
func carrierLines(options []domain.CarrierOption, newRef func() string) []domain.DeliveryQuoteLine {
	lines := make([]domain.DeliveryQuoteLine, len(options))
	for i, opt := range options {
		lines[i] = domain.DeliveryQuoteLine{
			LeadTimeLabel: fmt.Sprintf(carrierLeadTimeForm, opt.DeliveryTimeDays),
			Price:         carrierPricePrefix + opt.PriceText,
			Description:   carrierDescription(opt.Name),
			ReferenceCode: newRef(),
		}
	}
	return lines
}

func carrierDescription(name string) string {
	if strings.EqualFold(strings.TrimSpace(name), economyServiceName) {
		return economyDescription
	}
	return fmt.Sprintf(expressDescFormat, name)
}
