package frame

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressSize is the length of a link-layer address.
const AddressSize = 6

// Address is a link-layer (MAC) address.
type Address [AddressSize]byte

// Broadcast is the reserved all-ones address.
var Broadcast = Address{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// IsBroadcast reports whether a is the broadcast address.
func (a Address) IsBroadcast() bool {
	return a == Broadcast
}

// IsZero reports whether a is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) String() string {
	var sb strings.Builder
	sb.Grow(3*AddressSize - 1)
	for i, b := range a {
		if i > 0 {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// ParseAddress parses "A4:CF:12:05:1B:64", "a4-cf-12-05-1b-64" or "A4CF12051B64".
func ParseAddress(s string) (a Address, err error) {
	clean := strings.NewReplacer(":", "", "-", "").Replace(strings.TrimSpace(s))
	if len(clean) != 2*AddressSize {
		return a, fmt.Errorf("invalid address %q", s)
	}
	if _, err = hex.Decode(a[:], []byte(clean)); err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a, nil
}

// MustParseAddress is ParseAddress for constants; it panics on error.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}
