package registry

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/ledger"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/proptrust/property-registry/common"
	cst "github.com/proptrust/property-registry/contracts/registry/registryconst"
)

// Property is a registered claim about a real-world property.
type Property struct {
	ID                 string
	Status             cst.Status
	LegalOwner         interop.Hash160
	Address            string
	LastInspectionDate int
	VerifiedBy         interop.Hash160
}

const (
	ownerKey = 'o'

	verifierPrefix = 'v'
	propertyPrefix = 'p'
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	ctx := storage.GetContext()

	if isUpdate {
		args := data.([]any)
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	owner := common.Sender()
	if data != nil {
		args := data.([]any)
		if len(args) > 0 && args[0] != nil {
			owner = args[0].(interop.Hash160)
		}
	}

	if len(owner) != interop.Hash160Len {
		panic("invalid owner")
	}

	storage.Put(ctx, []byte{ownerKey}, owner)

	runtime.Log("property registry initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by contract owner.
func Update(script []byte, manifest []byte, data any) {
	ctx := storage.GetReadOnlyContext()
	checkOwner(ctx)

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("property registry updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

// Owner returns the account that manages verifiers of the registry.
func Owner() interop.Hash160 {
	return getOwner(storage.GetReadOnlyContext())
}

// AddVerifier grants the verifier role to the account. Only contract owner
// can do that. Adding an existing verifier is a no-op.
func AddVerifier(verifier interop.Hash160) {
	ctx := storage.GetContext()
	checkOwner(ctx)
	checkAccount(verifier)

	if common.PutFlag(ctx, verifierKey(verifier)) {
		runtime.Notify("VerifierAdded", verifier)
	}
}

// RemoveVerifier revokes the verifier role from the account. Only contract
// owner can do that. Removing an account that is not a verifier is a no-op.
func RemoveVerifier(verifier interop.Hash160) {
	ctx := storage.GetContext()
	checkOwner(ctx)
	checkAccount(verifier)

	if common.DeleteFlag(ctx, verifierKey(verifier)) {
		runtime.Notify("VerifierRemoved", verifier)
	}
}

// IsVerifier checks whether the account currently holds the verifier role.
func IsVerifier(account interop.Hash160) bool {
	return isVerifier(storage.GetReadOnlyContext(), account)
}

// Verifiers returns an iterator over script hashes of all current verifiers.
func Verifiers() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{verifierPrefix}, storage.KeysOnly|storage.RemovePrefix)
}

// RegisterProperty records a new unverified property claimed by the
// transaction sender. Identifiers are unique: an existing property is never
// overwritten.
func RegisterProperty(id string, address string) {
	ctx := storage.GetContext()

	if len(id) == 0 {
		panic(cst.ErrEmptyID)
	}
	if len(id) > cst.MaxIDLength {
		panic(cst.ErrTooLongID)
	}
	if propertyExists(ctx, id) {
		panic(cst.ErrAlreadyExists)
	}

	owner := common.WitnessedSender(cst.ErrUnauthorized)

	putProperty(ctx, Property{
		ID:                 id,
		Status:             cst.Unverified,
		LegalOwner:         owner,
		Address:            address,
		LastInspectionDate: ledger.CurrentIndex(),
	})

	runtime.Notify("PropertyRegistered", id, owner)
}

// VerifyProperty approves the unverified property. Only active verifier can
// do that.
func VerifyProperty(id string) {
	ctx := storage.GetContext()

	verifier := setVerdict(ctx, id, cst.Verified)

	runtime.Notify("PropertyVerified", id, verifier)
}

// RejectProperty declines the unverified property. Only active verifier can
// do that. The reason is published in the notification and is not kept in
// the property record.
func RejectProperty(id string, reason string) {
	ctx := storage.GetContext()

	verifier := setVerdict(ctx, id, cst.Rejected)

	runtime.Notify("PropertyRejected", id, verifier, reason)
}

// GetPropertyDetails returns the property record. It panics if the property
// is not registered.
func GetPropertyDetails(id string) Property {
	ctx := storage.GetReadOnlyContext()

	if !propertyExists(ctx, id) {
		panic(cst.ErrNotFound)
	}

	return getProperty(ctx, id)
}

// IsPropertyVerified checks whether the property has been approved. It
// returns false for unknown properties.
func IsPropertyVerified(id string) bool {
	ctx := storage.GetReadOnlyContext()

	if !propertyExists(ctx, id) {
		return false
	}

	return getProperty(ctx, id).Status == cst.Verified
}

// setVerdict moves the existing unverified property to the terminal status on
// behalf of the calling verifier and returns the verifier.
func setVerdict(ctx storage.Context, id string, status cst.Status) interop.Hash160 {
	if !propertyExists(ctx, id) {
		panic(cst.ErrNotFound)
	}

	verifier := checkVerifier(ctx)

	p := getProperty(ctx, id)
	if p.Status != cst.Unverified {
		panic(cst.ErrAlreadyFinalized)
	}

	p.Status = status
	p.VerifiedBy = verifier
	p.LastInspectionDate = ledger.CurrentIndex()

	putProperty(ctx, p)

	return verifier
}

func getOwner(ctx storage.Context) interop.Hash160 {
	return storage.Get(ctx, []byte{ownerKey}).(interop.Hash160)
}

func isOwner(ctx storage.Context, account interop.Hash160) bool {
	owner := getOwner(ctx)
	return owner.Equals(account)
}

func isVerifier(ctx storage.Context, account interop.Hash160) bool {
	return common.KeyExists(ctx, verifierKey(account))
}

// checkOwner panics with unauthorized error if the transaction is not sent
// by contract owner.
func checkOwner(ctx storage.Context) interop.Hash160 {
	caller := common.WitnessedSender(cst.ErrUnauthorized)
	if !isOwner(ctx, caller) {
		panic(cst.ErrUnauthorized)
	}

	return caller
}

// checkVerifier panics with unauthorized error if the transaction is not sent
// by an active verifier.
func checkVerifier(ctx storage.Context) interop.Hash160 {
	caller := common.WitnessedSender(cst.ErrUnauthorized)
	if !isVerifier(ctx, caller) {
		panic(cst.ErrUnauthorized)
	}

	return caller
}

func checkAccount(account interop.Hash160) {
	if len(account) != interop.Hash160Len {
		panic(cst.ErrInvalidAccount)
	}
}

// propertyExists reports false for identifiers that can't form a storage key.
func propertyExists(ctx storage.Context, id string) bool {
	if len(id) > cst.MaxIDLength {
		return false
	}
	return common.KeyExists(ctx, propertyKey(id))
}

func getProperty(ctx storage.Context, id string) Property {
	data := storage.Get(ctx, propertyKey(id)).([]byte)
	return std.Deserialize(data).(Property)
}

func putProperty(ctx storage.Context, p Property) {
	common.SetSerialized(ctx, propertyKey(p.ID), p)
}

func verifierKey(account interop.Hash160) []byte {
	return append([]byte{verifierPrefix}, account...)
}

func propertyKey(id string) []byte {
	return append([]byte{propertyPrefix}, []byte(id)...)
}
