package network

import (
	"strings"
)

const macHexDigits = 12

// NormalizeMAC folds a MAC address to its canonical form: 12 lower-case hex
// digits without separators. Colons, dashes and dots are accepted as
// separators, so "00:11:22:AA:BB:CC", "00-11-22-aa-bb-cc", "0011.22aa.bbcc"
// and "001122aabbcc" all normalize to "001122aabbcc".
//
// NormalizeMAC is idempotent.
func NormalizeMAC(mac string) (string, error) {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(mac)))

	if len(folded) != macHexDigits {
		return "", validationError("invalid MAC address %q: expected 6 hex pairs", mac)
	}

	for _, r := range folded {
		if !isHexDigit(r) {
			return "", validationError("invalid MAC address %q: non-hex character %q", mac, r)
		}
	}

	return folded, nil
}

// FormatMAC renders a MAC address in the colon-separated lower-case form the
// controller's command endpoints expect ("00:11:22:aa:bb:cc").
func FormatMAC(mac string) (string, error) {
	canonical, err := NormalizeMAC(mac)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(macHexDigits + macHexDigits/2 - 1)
	for i := 0; i < macHexDigits; i += 2 {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(canonical[i : i+2])
	}

	return b.String(), nil
}

// sameMAC compares two controller-reported MAC addresses, ignoring format.
// Unparseable values never match.
func sameMAC(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	na, err := NormalizeMAC(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeMAC(b)
	if err != nil {
		return false
	}

	return na == nb
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}
