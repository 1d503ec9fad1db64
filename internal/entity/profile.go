package domain

import "strings"

// Profile holds the buyer's contact and shipping data. Checkout requires a
// complete shipping profile; everything else on it is optional.
type Profile struct {
	UserID       string
	FullName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	Province     string
	PostalCode   string
	Country      string
}

// HasCompleteShipping reports whether the fields required for checkout are
// all present: phone, address line 1, city, province, postal code.
func (p Profile) HasCompleteShipping() bool {
	return p.Phone != "" && p.AddressLine1 != "" && p.City != "" &&
		p.Province != "" && p.PostalCode != ""
}

// ShippingAddress renders the profile as a single free-text address line,
// e.g. "Av. Belgrano 1234, Piso 2, Rosario, Santa Fe, 2000, Argentina".
func (p Profile) ShippingAddress() string {
	parts := make([]string, 0, 6)
	for _, s := range []string{p.AddressLine1, p.AddressLine2, p.City, p.Province, p.PostalCode, p.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
