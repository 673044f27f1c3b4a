package gateway

import (
	"regexp"
	"strings"
)

// fullName joins the buyer's names; a missing last name degrades to the
// title-prefixed form the gateways display on the checkout page.
func fullName(b Buyer) string {
	first := strings.TrimSpace(b.FirstName)
	last := strings.TrimSpace(b.LastName)
	if last == "" {
		return "Sr(a). " + first
	}
	return first + " " + last
}

// addressParts is the decomposition Moip's billing address schema wants.
type addressParts struct {
	Street   string
	Number   string
	District string
}

// splitAddress breaks a single-line address ("Rua Exemplo, 123 Centro")
// into street, house number and neighborhood. Address quality is outside
// our control: input without the comma shape yields empty sub-fields, it
// never fails.
func splitAddress(raw string) addressParts {
	street, rest, found := strings.Cut(raw, ",")
	parts := addressParts{Street: strings.TrimSpace(street)}
	if !found {
		return parts
	}
	number, district, found := strings.Cut(strings.TrimSpace(rest), " ")
	parts.Number = strings.TrimSpace(number)
	if found {
		parts.District = strings.TrimSpace(district)
	}
	return parts
}

var (
	nonDigits  = regexp.MustCompile(`[^0-9]+`)
	phoneShape = regexp.MustCompile(`([0-9]{2})([0-9]{4})([0-9]{4})`)
)

// formatPhone strips formatting and the two-digit country prefix, then
// regroups a ten-digit number as "(XX) XXXX-XXXX". Numbers of any other
// length pass through ungrouped.
func formatPhone(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) <= 2 {
		return ""
	}
	return phoneShape.ReplaceAllString(digits[2:], "($1) $2-$3")
}
