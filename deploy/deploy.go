// Package deploy provides the deployment procedure of Property Registry
// contract.
package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/proptrust/property-registry/contracts"
	"github.com/proptrust/property-registry/rpc/registry"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the registry deployment.
type Blockchain interface {
	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Actor composes, signs and sends transactions on behalf of the local
// account. [actor.Actor] satisfies it.
//
// [actor.Actor]: https://pkg.go.dev/github.com/nspcc-dev/neo-go/pkg/rpcclient/actor#Actor
type Actor interface {
	// Sender returns the account paying for the transactions. It also defines
	// the address of the deployed contract.
	Sender() util.Uint160

	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)

	// Wait waits for the transaction to be accepted by the chain and returns
	// its execution result.
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Prm groups all parameters of the registry deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the registry to.
	Blockchain Blockchain

	// Local account actor (must be able to sign).
	Actor Actor

	// Compiled registry contract.
	Contract contracts.Contract

	// Account managing verifiers of the registry. Zero value means the
	// Actor's sender. It is used on the initial deployment only and is never
	// changed by updates.
	Owner util.Uint160

	// Address of the already deployed registry to update. Zero value means
	// the address derived from the Actor's sender, NEF checksum and manifest
	// name. Such an address changes with every rebuild of the contract, so
	// it is only suitable for the initial deployment.
	Address util.Uint160
}

// ErrTxFault is returned when the deployment transaction has been accepted by
// the chain but its execution failed.
var ErrTxFault = errors.New("transaction execution failed")

// ErrMissingContract is returned when Prm.Address references no contract.
var ErrMissingContract = errors.New("registry contract is missing on the chain")

// Deploy deploys the registry contract to the blockchain or updates it if the
// contract is already there with another executable. Deploy does nothing if
// the on-chain contract has the same NEF checksum.
//
// The existing registry is looked up at Prm.Address if it is set, and
// ErrMissingContract is returned if it is not there. Otherwise the address is
// derived from the Actor's sender, NEF checksum and manifest name, and a new
// registry is deployed if it is missing.
//
// Deploy returns the contract address.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	addr := prm.Address
	explicit := !addr.Equals(util.Uint160{})
	if !explicit {
		addr = state.CreateContractHash(prm.Actor.Sender(), prm.Contract.NEF.Checksum, prm.Contract.Manifest.Name)
	}

	l := prm.Logger.With(zap.Stringer("address", addr))

	bNEF, err := prm.Contract.NEF.Bytes()
	if err != nil {
		return addr, fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(prm.Contract.Manifest)
	if err != nil {
		return addr, fmt.Errorf("encode manifest: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return addr, err
	}

	onChain, err := prm.Blockchain.GetContractStateByHash(addr)
	if err != nil && !isErrContractNotFound(err) {
		return addr, fmt.Errorf("get state of the registry contract: %w", err)
	}

	var (
		target = addr
		method = "update"
		args   = []any{bNEF, jManifest, nil}
	)

	if err != nil && explicit {
		return addr, fmt.Errorf("%w: %w", ErrMissingContract, err)
	}

	if err != nil {
		l.Info("registry contract is missing on the chain, deploying...")

		var owner any
		if !prm.Owner.Equals(util.Uint160{}) {
			owner = prm.Owner
			l = l.With(zap.Stringer("owner", prm.Owner))
		}

		target = management.Hash
		method = "deploy"
		args = []any{bNEF, jManifest, []any{owner}}
	} else {
		if onChain.NEF.Checksum == prm.Contract.NEF.Checksum {
			l.Info("registry contract is already up-to-date")
			return addr, nil
		}

		l.Info("registry contract has another executable on the chain, updating...",
			zap.Uint32("on-chain checksum", onChain.NEF.Checksum),
			zap.Uint32("new checksum", prm.Contract.NEF.Checksum))
	}

	if err = ctx.Err(); err != nil {
		return addr, err
	}

	h, vub, err := prm.Actor.SendCall(target, method, args...)
	if err != nil {
		return addr, fmt.Errorf("send '%s' transaction: %w", method, registry.ParseError(err))
	}

	l.Info("transaction sent, waiting for it to be accepted...",
		zap.String("method", method), zap.Stringer("tx", h), zap.Uint32("vub", vub))

	res, err := prm.Actor.Wait(h, vub, nil)
	if err != nil {
		return addr, fmt.Errorf("wait for '%s' transaction %s: %w", method, h.StringLE(), err)
	}

	if res.VMState != vmstate.Halt {
		cause := registry.ErrorFromFault(res.FaultException)
		if cause == nil {
			cause = fmt.Errorf("unexpected state %s", res.VMState)
		}

		return addr, fmt.Errorf("%w: '%s' transaction %s: %w", ErrTxFault, method, h.StringLE(), cause)
	}

	l.Info("registry contract successfully synchronized with the chain", zap.String("method", method))

	return addr, nil
}

func isErrContractNotFound(err error) bool {
	return strings.Contains(err.Error(), "Unknown contract")
}
