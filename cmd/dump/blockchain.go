package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// wrapper over rpcNeo providing Neo blockchain services needed for current command.
type remoteBlockchain struct {
	rpc *rpcclient.Client
}

// newRemoteBlockChain dials Neo RPC server and returns remoteBlockchain based
// on the opened connection. Connection and all requests are done within the
// given timeout.
func newRemoteBlockChain(ctx context.Context, blockChainRPCEndpoint string, timeout time.Duration) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, blockChainRPCEndpoint, rpcclient.Options{
		DialTimeout:    timeout,
		RequestTimeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return &remoteBlockchain{
		rpc: c,
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// penultStateRoot returns state root of the penult block. The latest one may
// be not validated yet.
func (x *remoteBlockchain) penultStateRoot() (util.Uint256, error) {
	nLatestBlock, err := x.rpc.GetBlockCount()
	if err != nil {
		return util.Uint256{}, fmt.Errorf("get number of the latest block: %w", err)
	}

	if nLatestBlock < 2 {
		return util.Uint256{}, fmt.Errorf("too short chain of %d blocks", nLatestBlock)
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return util.Uint256{}, fmt.Errorf("get state root at penult block #%d: %w", nLatestBlock-1, err)
	}

	return stateRoot.Root, nil
}

// iterateContractStorage iterates over storage items of the Neo smart
// contract referenced by given address which keys have the given prefix and
// passes them into f. Items are read at the given state root.
// iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(root util.Uint256, contract util.Uint160, prefix []byte, f func(key, value []byte) error) error {
	var start []byte

	for {
		res, err := x.rpc.FindStates(root, contract, prefix, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated || len(res.Results) == 0 {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
