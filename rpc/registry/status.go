package registry

import (
	"math/big"

	cst "github.com/proptrust/property-registry/contracts/registry/registryconst"
)

// Possible property states in [Property].
var (
	// StatusUnverified is used by registered properties without a verdict.
	StatusUnverified = big.NewInt(int64(cst.Unverified))

	// StatusVerified is used by properties approved by a verifier.
	StatusVerified = big.NewInt(int64(cst.Verified))

	// StatusRejected is used by properties declined by a verifier.
	StatusRejected = big.NewInt(int64(cst.Rejected))
)

// IsVerified checks whether the property has been approved.
func (p *Property) IsVerified() bool {
	return p.Status != nil && p.Status.Cmp(StatusVerified) == 0
}

// IsFinal checks whether the property already has a verdict.
func (p *Property) IsFinal() bool {
	return p.Status != nil && p.Status.Cmp(StatusUnverified) != 0
}
