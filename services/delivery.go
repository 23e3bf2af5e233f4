package services

import (
	"math"

	"github.com/shopspring/decimal"
)

const earthRadiusKm = 6371.0

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return validationError("coordinates out of range: lat=%v lng=%v", c.Lat, c.Lng)
	}
	return nil
}

// FeeSchedule -> FreeThreshold nol berarti tidak ada gratis ongkir
type FeeSchedule struct {
	BaseFee       decimal.Decimal
	PerKmFee      decimal.Decimal
	MaxRadiusKm   float64
	FreeThreshold decimal.Decimal
}

type DeliveryQuote struct {
	DistanceKm   float64         `json:"distance_km"`
	Fee          decimal.Decimal `json:"fee"`
	FreeDelivery bool            `json:"free_delivery"`
	WithinRadius bool            `json:"within_radius"`
}

// HaversineKm -> jarak great-circle dalam km
func HaversineKm(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// QuoteDelivery menghitung ongkir dari origin ke destination.
// Subtotal >= FreeThreshold selalu gratis, bahkan di luar radius.
func QuoteDelivery(origin, destination Coordinates, subtotal decimal.Decimal, schedule FeeSchedule) (DeliveryQuote, error) {
	if err := origin.Validate(); err != nil {
		return DeliveryQuote{}, err
	}
	if err := destination.Validate(); err != nil {
		return DeliveryQuote{}, err
	}

	distance := HaversineKm(origin, destination)
	quote := DeliveryQuote{
		DistanceKm:   distance,
		Fee:          decimal.Zero,
		WithinRadius: distance <= schedule.MaxRadiusKm,
	}

	if schedule.FreeThreshold.IsPositive() && subtotal.GreaterThanOrEqual(schedule.FreeThreshold) {
		quote.FreeDelivery = true
		return quote, nil
	}

	if !quote.WithinRadius {
		return quote, &Error{
			Kind:    KindOutOfServiceArea,
			Message: "delivery address is outside the service area",
			Details: map[string]interface{}{
				"distance_km":   math.Round(distance*100) / 100,
				"max_radius_km": schedule.MaxRadiusKm,
			},
		}
	}

	fee := schedule.BaseFee.Add(schedule.PerKmFee.Mul(decimal.NewFromFloat(distance)))
	quote.Fee = fee.Round(0)
	return quote, nil
}
