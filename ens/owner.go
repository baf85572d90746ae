package ens

import (
	"github.com/ethereum/go-ethereum/common"
)

type OwnershipKind int

const (
	// OwnershipUnknown covers names that do not exist and names whose owner
	// could not be read.
	OwnershipUnknown OwnershipKind = iota
	OwnershipDirect
	OwnershipWrapped
)

func (k OwnershipKind) String() string {
	switch k {
	case OwnershipDirect:
		return "direct"
	case OwnershipWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

type Ownership struct {
	Kind  OwnershipKind  `json:"kind"`
	Owner common.Address `json:"owner"`
}

func (o Ownership) Known() bool {
	return o.Kind != OwnershipUnknown
}

// Reconcile decides the effective owner from the registry's and the
// wrapper's answers. A nil answer is a failed read.
func Reconcile(registryOwner, wrapperOwner *common.Address) Ownership {
	if registryOwner == nil || *registryOwner == (common.Address{}) {
		return Ownership{Kind: OwnershipUnknown}
	}
	if *registryOwner == common.HexToAddress(NameWrapperAddress) {
		if wrapperOwner == nil || *wrapperOwner == (common.Address{}) {
			return Ownership{Kind: OwnershipUnknown}
		}
		return Ownership{Kind: OwnershipWrapped, Owner: *wrapperOwner}
	}
	return Ownership{Kind: OwnershipDirect, Owner: *registryOwner}
}
