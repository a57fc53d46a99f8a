package order

import (
	"regexp"
	"strings"
)

var postalCodeRe = regexp.MustCompile(`^\d{4}$`)

// ExtractPostalCode mines a 4-digit postal token out of a flattened address
// string. This is the legacy import-compat path for orders persisted before
// addresses were structured; it is lossy by construction (a house number
// like "1234" matches too). Returns "" when no token is found.
func ExtractPostalCode(display string) string {
	return legacyPostalRe.FindString(display)
}

var legacyPostalRe = regexp.MustCompile(`\b\d{4}\b`)

func validateCustomer(c Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "customer.name", Message: "required"}
	}
	if strings.TrimSpace(c.Phone) == "" {
		return &ValidationError{Field: "customer.phone", Message: "required"}
	}
	if digitCount(c.Phone) < 6 {
		return &ValidationError{Field: "customer.phone", Message: "must contain at least 6 digits"}
	}
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Field: "customer.email", Message: "required"}
	}
	if !validEmail(c.Email) {
		return &ValidationError{Field: "customer.email", Message: "invalid email address"}
	}
	return nil
}

func validateDelivery(d Delivery) error {
	if !d.Enabled {
		return nil
	}
	a := d.Address
	if a.Street == "" || a.HouseNumber == "" || a.PostalCode == "" || a.City == "" {
		return &ValidationError{Field: "delivery.address", Message: "full address required for delivery"}
	}
	if !postalCodeRe.MatchString(a.PostalCode) {
		return &ValidationError{Field: "delivery.address.postalCode", Message: "must be a 4-digit postal code"}
	}
	return nil
}

// validEmail performs the minimal check the storefront always used: an "@"
// with a dot somewhere in the domain part. Deliverability is the mailer's
// problem.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
