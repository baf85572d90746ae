// Package ens reads and writes payment configurations published as text
// records on ENS names, and resolves names to owners and addresses.
package ens

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/text/unicode/norm"
)

// Mainnet ENS deployment.
const (
	RegistryAddress       = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	PublicResolverAddress = "0x231b0Ee14048e9dCcD1d247744d114a4EB5E8E63"
	NameWrapperAddress    = "0xD4416b13d2b3a9aBae7AcD5D6C2BbDBE25686401"
)

const (
	Suffix      = ".eth"
	reverseRoot = "addr.reverse"
)

// Normalize lower-cases name and appends ".eth" when it carries no suffix.
// Example:
// - Normalize("Alice") = "alice.eth"
// - Normalize("bob.eth") = "bob.eth"
func Normalize(name string) string {
	name = strings.ToLower(norm.NFC.String(strings.TrimSpace(name)))
	if name == "" || strings.HasSuffix(name, Suffix) {
		return name
	}
	return name + Suffix
}

// Namehash derives the registry node of an already normalized name.
func Namehash(name string) common.Hash {
	node := common.Hash{}
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), labelHash))
	}
	return node
}

// TokenID is the node read as an integer, which is how the name wrapper
// identifies a name.
func TokenID(node common.Hash) *big.Int {
	return new(big.Int).SetBytes(node.Bytes())
}

// ReverseName is the name under which addr's primary name is recorded.
func ReverseName(addr common.Address) string {
	return strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + "." + reverseRoot
}
