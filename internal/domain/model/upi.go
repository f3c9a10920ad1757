package model

import (
	"fmt"
	"regexp"
	"strings"

	"telegram-upi-lookup/internal/domain"
)

// upiPattern accepts "name@handle". The name is 2..256 letters or digits in any
// script, plus underscore, dot and dash; the handle is 2..64 ASCII letters.
var upiPattern = regexp.MustCompile(`^[\p{L}\p{N}_.\-]{2,256}@[a-zA-Z]{2,64}$`)

// UPIAddress is a validated, lower-cased UPI virtual payment address.
type UPIAddress struct {
	Name   string
	Handle string
}

func (a UPIAddress) String() string { return a.Name + "@" + a.Handle }

// ParseUPI lower-cases raw and validates it as a UPI address.
func ParseUPI(raw string) (UPIAddress, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if !upiPattern.MatchString(s) {
		return UPIAddress{}, fmt.Errorf("%q: %w", raw, domain.ErrInvalidUPI)
	}
	at := strings.LastIndexByte(s, '@')
	return UPIAddress{Name: s[:at], Handle: s[at+1:]}, nil
}

// BankHandle maps a UPI handle (the part after '@') to its issuing bank.
type BankHandle struct {
	Handle string `json:"handle" yaml:"handle"`
	Bank   string `json:"bank" yaml:"bank"`
	IFSC   string `json:"ifsc" yaml:"ifsc"`
}

// DefaultHandles returns the built-in handle table. The IFSC values point at each
// bank's head-office branch.
func DefaultHandles() []BankHandle {
	return []BankHandle{
		{Handle: "oksbi", Bank: "State Bank of India", IFSC: "SBIN0000001"},
		{Handle: "okhdfcbank", Bank: "HDFC Bank", IFSC: "HDFC0000001"},
		{Handle: "okicici", Bank: "ICICI Bank", IFSC: "ICIC0000001"},
		{Handle: "okaxis", Bank: "Axis Bank", IFSC: "UTIB0000001"},
		{Handle: "ybl", Bank: "Yes Bank", IFSC: "YESB0000001"},
		{Handle: "paytm", Bank: "Paytm Payments Bank", IFSC: "PYTM0000001"},
		{Handle: "ibl", Bank: "ICICI Bank", IFSC: "ICIC0000001"},
		{Handle: "axl", Bank: "Axis Bank", IFSC: "UTIB0000001"},
		{Handle: "apl", Bank: "Axis Bank", IFSC: "UTIB0000001"},
	}
}

// UPIResult is the answer to a /upi lookup. Details is nil when the branch
// lookup for the handle's IFSC failed; the reply then degrades to bank and IFSC only.
type UPIResult struct {
	Address UPIAddress
	Handle  BankHandle
	Details *IFSCDetails
}
