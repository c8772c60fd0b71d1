// Package registry contains RPC wrappers for Property Registry contract.
package registry

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Property is a contract-specific registry.Property type used by its methods.
type Property struct {
	ID                 string
	Status             *big.Int
	LegalOwner         util.Uint160
	Address            string
	LastInspectionDate *big.Int
	// VerifiedBy is nil until the property gets a verdict.
	VerifiedBy *util.Uint160
}

// VerifierAddedEvent represents "VerifierAdded" event emitted by the contract.
type VerifierAddedEvent struct {
	Verifier util.Uint160
}

// VerifierRemovedEvent represents "VerifierRemoved" event emitted by the contract.
type VerifierRemovedEvent struct {
	Verifier util.Uint160
}

// PropertyRegisteredEvent represents "PropertyRegistered" event emitted by the contract.
type PropertyRegisteredEvent struct {
	ID    string
	Owner util.Uint160
}

// PropertyVerifiedEvent represents "PropertyVerified" event emitted by the contract.
type PropertyVerifiedEvent struct {
	ID       string
	Verifier util.Uint160
}

// PropertyRejectedEvent represents "PropertyRejected" event emitted by the contract.
type PropertyRejectedEvent struct {
	ID       string
	Verifier util.Uint160
	Reason   string
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods. Errors of its methods match
// ErrUnauthorized, ErrAlreadyExists and ErrNotFound with [errors.Is] when the
// contract rejects the call during test invocation.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// GetPropertyDetails invokes `getPropertyDetails` method of contract.
// Unknown properties result in an error matching ErrNotFound.
func (c *ContractReader) GetPropertyDetails(id string) (*Property, error) {
	p, err := itemToProperty(unwrap.Item(c.invoker.Call(c.hash, "getPropertyDetails", id)))
	if err != nil {
		return nil, ParseError(err)
	}
	return p, nil
}

// IsPropertyVerified invokes `isPropertyVerified` method of contract.
func (c *ContractReader) IsPropertyVerified(id string) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isPropertyVerified", id))
}

// IsVerifier invokes `isVerifier` method of contract.
func (c *ContractReader) IsVerifier(account util.Uint160) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "isVerifier", account))
}

// Owner invokes `owner` method of contract.
func (c *ContractReader) Owner() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "owner"))
}

// Verifiers invokes `verifiers` method of contract.
func (c *ContractReader) Verifiers() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "verifiers"))
}

// VerifiersExpanded is similar to Verifiers (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) VerifiersExpanded(_numOfIteratorItems int) ([]stackitem.Item, error) {
	return unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "verifiers", _numOfIteratorItems))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// AddVerifier creates a transaction invoking `addVerifier` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) AddVerifier(verifier util.Uint160) (util.Uint256, uint32, error) {
	return c.sendCall("addVerifier", verifier)
}

// AddVerifierTransaction creates a transaction invoking `addVerifier` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AddVerifierTransaction(verifier util.Uint160) (*transaction.Transaction, error) {
	return c.makeCall("addVerifier", verifier)
}

// AddVerifierUnsigned creates a transaction invoking `addVerifier` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AddVerifierUnsigned(verifier util.Uint160) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("addVerifier", nil, verifier)
}

// RemoveVerifier creates a transaction invoking `removeVerifier` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RemoveVerifier(verifier util.Uint160) (util.Uint256, uint32, error) {
	return c.sendCall("removeVerifier", verifier)
}

// RemoveVerifierTransaction creates a transaction invoking `removeVerifier` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RemoveVerifierTransaction(verifier util.Uint160) (*transaction.Transaction, error) {
	return c.makeCall("removeVerifier", verifier)
}

// RemoveVerifierUnsigned creates a transaction invoking `removeVerifier` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RemoveVerifierUnsigned(verifier util.Uint160) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("removeVerifier", nil, verifier)
}

// RegisterProperty creates a transaction invoking `registerProperty` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RegisterProperty(id string, address string) (util.Uint256, uint32, error) {
	return c.sendCall("registerProperty", id, address)
}

// RegisterPropertyTransaction creates a transaction invoking `registerProperty` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RegisterPropertyTransaction(id string, address string) (*transaction.Transaction, error) {
	return c.makeCall("registerProperty", id, address)
}

// RegisterPropertyUnsigned creates a transaction invoking `registerProperty` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RegisterPropertyUnsigned(id string, address string) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("registerProperty", nil, id, address)
}

// VerifyProperty creates a transaction invoking `verifyProperty` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) VerifyProperty(id string) (util.Uint256, uint32, error) {
	return c.sendCall("verifyProperty", id)
}

// VerifyPropertyTransaction creates a transaction invoking `verifyProperty` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) VerifyPropertyTransaction(id string) (*transaction.Transaction, error) {
	return c.makeCall("verifyProperty", id)
}

// VerifyPropertyUnsigned creates a transaction invoking `verifyProperty` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) VerifyPropertyUnsigned(id string) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("verifyProperty", nil, id)
}

// RejectProperty creates a transaction invoking `rejectProperty` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) RejectProperty(id string, reason string) (util.Uint256, uint32, error) {
	return c.sendCall("rejectProperty", id, reason)
}

// RejectPropertyTransaction creates a transaction invoking `rejectProperty` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) RejectPropertyTransaction(id string, reason string) (*transaction.Transaction, error) {
	return c.makeCall("rejectProperty", id, reason)
}

// RejectPropertyUnsigned creates a transaction invoking `rejectProperty` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) RejectPropertyUnsigned(id string, reason string) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("rejectProperty", nil, id, reason)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.sendCall("update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.makeCall("update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.makeUnsignedCall("update", nil, script, manifest, data)
}

// sendCall, makeCall and makeUnsignedCall pass contract exceptions caught by
// the actor's test invocation through ParseError.
func (c *Contract) sendCall(method string, params ...any) (util.Uint256, uint32, error) {
	h, vub, err := c.actor.SendCall(c.hash, method, params...)
	return h, vub, ParseError(err)
}

func (c *Contract) makeCall(method string, params ...any) (*transaction.Transaction, error) {
	tx, err := c.actor.MakeCall(c.hash, method, params...)
	return tx, ParseError(err)
}

func (c *Contract) makeUnsignedCall(method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error) {
	tx, err := c.actor.MakeUnsignedCall(c.hash, method, attrs, params...)
	return tx, ParseError(err)
}

// itemToProperty converts stack item into *Property.
func itemToProperty(item stackitem.Item, err error) (*Property, error) {
	if err != nil {
		return nil, err
	}
	var res = new(Property)
	err = res.FromStackItem(item)
	return res, err
}

// FromStackItem retrieves fields of Property from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Property) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 6 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err   error
	)
	index++
	res.ID, err = itemToString(arr[index])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	index++
	res.Status, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Status: %w", err)
	}

	index++
	res.LegalOwner, err = itemToUint160(arr[index])
	if err != nil {
		return fmt.Errorf("field LegalOwner: %w", err)
	}

	index++
	res.Address, err = itemToString(arr[index])
	if err != nil {
		return fmt.Errorf("field Address: %w", err)
	}

	index++
	res.LastInspectionDate, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field LastInspectionDate: %w", err)
	}

	index++
	if _, ok := arr[index].(stackitem.Null); !ok {
		u, err := itemToUint160(arr[index])
		if err != nil {
			return fmt.Errorf("field VerifiedBy: %w", err)
		}
		res.VerifiedBy = &u
	}

	return nil
}

// VerifierAddedEventsFromApplicationLog retrieves a set of all emitted events
// with "VerifierAdded" name from the provided [result.ApplicationLog].
func VerifierAddedEventsFromApplicationLog(log *result.ApplicationLog) ([]*VerifierAddedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*VerifierAddedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "VerifierAdded" {
				continue
			}
			event := new(VerifierAddedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize VerifierAddedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to VerifierAddedEvent or
// returns an error if it's not possible to do to so.
func (e *VerifierAddedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Verifier, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Verifier: %w", err)
	}

	return nil
}

// VerifierRemovedEventsFromApplicationLog retrieves a set of all emitted events
// with "VerifierRemoved" name from the provided [result.ApplicationLog].
func VerifierRemovedEventsFromApplicationLog(log *result.ApplicationLog) ([]*VerifierRemovedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*VerifierRemovedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "VerifierRemoved" {
				continue
			}
			event := new(VerifierRemovedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize VerifierRemovedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to VerifierRemovedEvent or
// returns an error if it's not possible to do to so.
func (e *VerifierRemovedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 1)
	if err != nil {
		return err
	}

	e.Verifier, err = itemToUint160(arr[0])
	if err != nil {
		return fmt.Errorf("field Verifier: %w", err)
	}

	return nil
}

// PropertyRegisteredEventsFromApplicationLog retrieves a set of all emitted events
// with "PropertyRegistered" name from the provided [result.ApplicationLog].
func PropertyRegisteredEventsFromApplicationLog(log *result.ApplicationLog) ([]*PropertyRegisteredEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PropertyRegisteredEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PropertyRegistered" {
				continue
			}
			event := new(PropertyRegisteredEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PropertyRegisteredEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PropertyRegisteredEvent or
// returns an error if it's not possible to do to so.
func (e *PropertyRegisteredEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.ID, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	e.Owner, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Owner: %w", err)
	}

	return nil
}

// PropertyVerifiedEventsFromApplicationLog retrieves a set of all emitted events
// with "PropertyVerified" name from the provided [result.ApplicationLog].
func PropertyVerifiedEventsFromApplicationLog(log *result.ApplicationLog) ([]*PropertyVerifiedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PropertyVerifiedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PropertyVerified" {
				continue
			}
			event := new(PropertyVerifiedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PropertyVerifiedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PropertyVerifiedEvent or
// returns an error if it's not possible to do to so.
func (e *PropertyVerifiedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 2)
	if err != nil {
		return err
	}

	e.ID, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	e.Verifier, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Verifier: %w", err)
	}

	return nil
}

// PropertyRejectedEventsFromApplicationLog retrieves a set of all emitted events
// with "PropertyRejected" name from the provided [result.ApplicationLog].
func PropertyRejectedEventsFromApplicationLog(log *result.ApplicationLog) ([]*PropertyRejectedEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*PropertyRejectedEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "PropertyRejected" {
				continue
			}
			event := new(PropertyRejectedEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize PropertyRejectedEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to PropertyRejectedEvent or
// returns an error if it's not possible to do to so.
func (e *PropertyRejectedEvent) FromStackItem(item *stackitem.Array) error {
	arr, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.ID, err = itemToString(arr[0])
	if err != nil {
		return fmt.Errorf("field ID: %w", err)
	}

	e.Verifier, err = itemToUint160(arr[1])
	if err != nil {
		return fmt.Errorf("field Verifier: %w", err)
	}

	e.Reason, err = itemToString(arr[2])
	if err != nil {
		return fmt.Errorf("field Reason: %w", err)
	}

	return nil
}

func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, error) {
	if item == nil {
		return nil, errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	if len(arr) != n {
		return nil, errors.New("wrong number of structure elements")
	}
	return arr, nil
}

func itemToString(item stackitem.Item) (string, error) {
	b, err := item.TryBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("not a UTF-8 string")
	}
	return string(b), nil
}

func itemToUint160(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return util.Uint160{}, err
	}
	return u, nil
}
