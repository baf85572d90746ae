package common

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const NullAddress = "0x0000000000000000000000000000000000000000"

var addressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// IsAddress reports whether s is a 0x prefixed 40 hex character address.
func IsAddress(s string) bool {
	return addressRegex.MatchString(s)
}

func IsNullAddress(s string) bool {
	return strings.EqualFold(s, NullAddress)
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

func HexToHash(hex string) common.Hash {
	return common.HexToHash(hex)
}

// SameAddress compares two hex addresses ignoring case.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
