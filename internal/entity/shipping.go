package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingRates is the zone table: free for the home city, a flat cost for
// the rest of the home province, a higher flat cost nationally.
type ShippingRates struct {
	HomeCity         string
	HomeProvince     string
	HomeProvinceCost decimal.Decimal
	NationalCost     decimal.Decimal
}

type ShippingQuote struct {
	Cost decimal.Decimal
	Zone string
	Free bool
}

const (
	ZoneHomeCity     = "home_city"
	ZoneHomeProvince = "home_province"
	ZoneNational     = "national"
)

// Quote resolves the shipping cost for a destination. Matching is
// substring-based on the normalized city/province, so "Rosario Centro"
// still lands in the home-city zone.
func (r ShippingRates) Quote(city, province string) ShippingQuote {
	c := strings.ToLower(strings.TrimSpace(city))
	p := strings.ToLower(strings.TrimSpace(province))

	if r.HomeCity != "" && strings.Contains(c, r.HomeCity) {
		return ShippingQuote{Cost: decimal.Zero, Zone: ZoneHomeCity, Free: true}
	}
	if r.HomeProvince != "" && strings.Contains(p, r.HomeProvince) {
		return ShippingQuote{Cost: r.HomeProvinceCost, Zone: ZoneHomeProvince}
	}
	return ShippingQuote{Cost: r.NationalCost, Zone: ZoneNational}
}
