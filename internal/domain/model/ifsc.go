package model

import (
	"fmt"
	"regexp"
	"strings"

	"telegram-upi-lookup/internal/domain"
)

// ifscPattern: four letter bank code, a literal zero, six alphanumeric branch chars.
var ifscPattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// NormalizeIFSC upper-cases raw and validates it as an IFSC code.
func NormalizeIFSC(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !ifscPattern.MatchString(s) {
		return "", fmt.Errorf("%q: %w", raw, domain.ErrInvalidIFSC)
	}
	return s, nil
}

// IFSCDetails is a bank branch record as returned by the IFSC lookup service.
type IFSCDetails struct {
	Bank     string `json:"BANK"`
	IFSC     string `json:"IFSC"`
	Branch   string `json:"BRANCH"`
	Address  string `json:"ADDRESS"`
	City     string `json:"CITY"`
	District string `json:"DISTRICT"`
	State    string `json:"STATE"`
	Centre   string `json:"CENTRE"`
	Contact  string `json:"CONTACT"`
	MICR     string `json:"MICR"`
	BankCode string `json:"BANKCODE"`
	SWIFT    string `json:"SWIFT"`
	UPI      bool   `json:"UPI"`
	RTGS     bool   `json:"RTGS"`
	NEFT     bool   `json:"NEFT"`
	IMPS     bool   `json:"IMPS"`
}

// Services lists the enabled payment rails in a stable order.
func (d *IFSCDetails) Services() []string {
	var out []string
	if d.UPI {
		out = append(out, "UPI")
	}
	if d.IMPS {
		out = append(out, "IMPS")
	}
	if d.NEFT {
		out = append(out, "NEFT")
	}
	if d.RTGS {
		out = append(out, "RTGS")
	}
	return out
}
