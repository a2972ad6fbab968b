package fees

import (
	"github.com/fairbid-co/fairbid/internal/apperr"
)

// ServiceType tags a request with the kind of work offered on the network.
type ServiceType string

const (
	ServiceCleaning    ServiceType = "cleaning"
	ServiceMaintenance ServiceType = "maintenance"
	ServiceConcierge   ServiceType = "concierge"
	ServiceTransport   ServiceType = "transport"
	ServiceOther       ServiceType = "other"
)

// ParseServiceType validates a raw tag coming from the API layer.
func ParseServiceType(raw string) (ServiceType, error) {
	st := ServiceType(raw)
	switch st {
	case ServiceCleaning, ServiceMaintenance, ServiceConcierge, ServiceTransport, ServiceOther:
		return st, nil
	}
	return "", apperr.Validationf("unknown service type %q", raw)
}

const (
	// DefaultRateBps is the platform commission: 10% of the agreed amount.
	DefaultRateBps = 1000

	// DefaultDeliveryFee is the flat delivery charge in COP minor units.
	DefaultDeliveryFee = 15000
)

// strategy holds the per-service-type pricing knobs. Kept as a lookup table so
// adding a type never touches the quoting code.
type strategy struct {
	RateBps int64
}

var strategies = map[ServiceType]strategy{
	ServiceCleaning:    {RateBps: DefaultRateBps},
	ServiceMaintenance: {RateBps: DefaultRateBps},
	ServiceConcierge:   {RateBps: DefaultRateBps},
	ServiceTransport:   {RateBps: DefaultRateBps},
	ServiceOther:       {RateBps: DefaultRateBps},
}

// Quote is the fee breakdown for one order. All values are integer minor units.
type Quote struct {
	ServiceFee  int64 `json:"service_fee"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// Calculator prices orders. It is pure: no I/O, deterministic for a given
// configuration.
type Calculator struct {
	deliveryFee int64
}

func NewCalculator(flatDeliveryFee int64) *Calculator {
	if flatDeliveryFee < 0 {
		flatDeliveryFee = DefaultDeliveryFee
	}
	return &Calculator{deliveryFee: flatDeliveryFee}
}

// Quote computes serviceFee (round half up), the flat delivery fee and the
// total. distanceKm is accepted for forward compatibility but does not affect
// the result.
func (c *Calculator) Quote(st ServiceType, amount int64, distanceKm float64) (Quote, error) {
	_ = distanceKm
	if amount < 0 {
		return Quote{}, apperr.Validationf("amount must not be negative")
	}
	rate := int64(DefaultRateBps)
	if s, ok := strategies[st]; ok {
		rate = s.RateBps
	}
	serviceFee := (amount*rate + 5000) / 10000
	return Quote{
		ServiceFee:  serviceFee,
		DeliveryFee: c.deliveryFee,
		Total:       amount + serviceFee + c.deliveryFee,
	}, nil
}
