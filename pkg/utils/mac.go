package utils

import (
	"net"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/projecteru2/ovsmap/pkg/terrors"
)

// NormalizeMAC lowercases and validates a hardware addr.
func NormalizeMAC(s string) (string, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return "", errors.Wrap(terrors.ErrBadMACAddr, s)
	}
	return strings.ToLower(hw.String()), nil
}

// MACPrefixAlias swaps the fa/fe leading octet of a MAC.
//
// Tap devices carry the guest MAC with the first octet flipped
// from fa to fe, so a miss on one prefix may hit on the other.
func MACPrefixAlias(mac string) (string, bool) {
	switch {
	case strings.HasPrefix(mac, "fa:"):
		return "fe:" + mac[3:], true
	case strings.HasPrefix(mac, "fe:"):
		return "fa:" + mac[3:], true
	default:
		return mac, false
	}
}

// HexToDec converts a 0x-prefixed (or bare) hex literal to decimal.
func HexToDec(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) == 0 {
		return 0, errors.Wrap(terrors.ErrBadRegisterValue, "empty")
	}
	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, errors.Wrap(terrors.ErrBadRegisterValue, s)
	}
	return int(v), nil
}
