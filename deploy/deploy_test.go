package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/proptrust/property-registry/contracts"
	"github.com/proptrust/property-registry/rpc/registry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testBlockchain struct {
	states map[util.Uint160]*state.Contract
	err    error
}

func (b *testBlockchain) GetContractStateByHash(h util.Uint160) (*state.Contract, error) {
	if b.err != nil {
		return nil, b.err
	}
	st, ok := b.states[h]
	if !ok {
		return nil, errors.New("Unknown contract")
	}
	return st, nil
}

type sentCall struct {
	contract util.Uint160
	method   string
	params   []any
}

type testActor struct {
	sender util.Uint160

	// applies successful calls to the chain state if set
	chain *testBlockchain

	sent    []sentCall
	sendErr error

	res     *state.AppExecResult
	waitErr error
}

func (a *testActor) Sender() util.Uint160 { return a.sender }

func (a *testActor) SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	a.sent = append(a.sent, sentCall{contract, method, params})
	if a.sendErr == nil && a.chain != nil {
		a.apply(contract, method, params)
	}
	return util.Uint256{1, 2, 3}, 100, a.sendErr
}

// apply mirrors management contract behavior: deploy creates the contract at
// the address derived from the sender, update replaces the executable in
// place.
func (a *testActor) apply(contract util.Uint160, method string, params []any) {
	f, err := nef.FileFromBytes(params[0].([]byte))
	if err != nil {
		panic(err)
	}

	var m manifest.Manifest
	if err = json.Unmarshal(params[1].([]byte), &m); err != nil {
		panic(err)
	}

	switch method {
	case "deploy":
		addr := state.CreateContractHash(a.sender, f.Checksum, m.Name)
		a.chain.states[addr] = &state.Contract{ContractBase: state.ContractBase{Hash: addr, NEF: f, Manifest: m}}
	case "update":
		st := a.chain.states[contract]
		st.NEF, st.Manifest = f, m
		st.UpdateCounter++
	}
}

func (a *testActor) Wait(util.Uint256, uint32, error) (*state.AppExecResult, error) {
	return a.res, a.waitErr
}

func haltResult() *state.AppExecResult {
	return &state.AppExecResult{Execution: state.Execution{VMState: vmstate.Halt}}
}

func testContract(t *testing.T, script byte) contracts.Contract {
	f, err := nef.NewFile([]byte{script})
	require.NoError(t, err)

	return contracts.Contract{
		NEF:      *f,
		Manifest: *manifest.NewManifest("PropertyRegistry"),
	}
}

func newPrm(t *testing.T) (Prm, *testBlockchain, *testActor) {
	b := &testBlockchain{states: make(map[util.Uint160]*state.Contract)}
	a := &testActor{sender: util.Uint160{9, 9, 9}, res: haltResult()}

	return Prm{
		Logger:     zaptest.NewLogger(t),
		Blockchain: b,
		Actor:      a,
		Contract:   testContract(t, 0x40),
	}, b, a
}

func TestDeploy(t *testing.T) {
	t.Run("initial", func(t *testing.T) {
		prm, _, a := newPrm(t)

		addr, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, state.CreateContractHash(a.sender, prm.Contract.NEF.Checksum, "PropertyRegistry"), addr)

		require.Len(t, a.sent, 1)
		require.Equal(t, management.Hash, a.sent[0].contract)
		require.Equal(t, "deploy", a.sent[0].method)
		require.Len(t, a.sent[0].params, 3)
		require.Equal(t, []any{nil}, a.sent[0].params[2])
	})

	t.Run("explicit owner", func(t *testing.T) {
		prm, _, a := newPrm(t)
		prm.Owner = util.Uint160{1, 1, 1}

		_, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Len(t, a.sent, 1)
		require.Equal(t, []any{prm.Owner}, a.sent[0].params[2])
	})

	t.Run("up-to-date", func(t *testing.T) {
		prm, b, a := newPrm(t)

		addr := state.CreateContractHash(a.sender, prm.Contract.NEF.Checksum, "PropertyRegistry")
		b.states[addr] = &state.Contract{ContractBase: state.ContractBase{Hash: addr, NEF: prm.Contract.NEF}}

		res, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, addr, res)
		require.Empty(t, a.sent)
	})

	t.Run("update after rebuild", func(t *testing.T) {
		prm, b, a := newPrm(t)
		a.chain = b

		addr, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Contains(t, b.states, addr)

		prm.Contract = testContract(t, 0x41)
		prm.Address = addr

		res, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, addr, res)

		require.Len(t, a.sent, 2)
		require.Equal(t, "deploy", a.sent[0].method)
		require.Equal(t, addr, a.sent[1].contract)
		require.Equal(t, "update", a.sent[1].method)
		require.Nil(t, a.sent[1].params[2])

		require.Len(t, b.states, 1)
		require.Equal(t, prm.Contract.NEF.Checksum, b.states[addr].NEF.Checksum)

		res, err = Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.Equal(t, addr, res)
		require.Len(t, a.sent, 2)
	})

	t.Run("rebuild without address", func(t *testing.T) {
		prm, b, a := newPrm(t)
		a.chain = b

		first, err := Deploy(context.Background(), prm)
		require.NoError(t, err)

		prm.Contract = testContract(t, 0x41)

		second, err := Deploy(context.Background(), prm)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
		require.Equal(t, "deploy", a.sent[1].method)
	})

	t.Run("missing at address", func(t *testing.T) {
		prm, _, a := newPrm(t)
		prm.Address = util.Uint160{5, 5, 5}

		addr, err := Deploy(context.Background(), prm)
		require.ErrorIs(t, err, ErrMissingContract)
		require.Equal(t, prm.Address, addr)
		require.Empty(t, a.sent)
	})

	t.Run("blockchain failure", func(t *testing.T) {
		prm, b, a := newPrm(t)
		b.err = errors.New("connection refused")

		_, err := Deploy(context.Background(), prm)
		require.ErrorIs(t, err, b.err)
		require.Empty(t, a.sent)
	})

	t.Run("send failure", func(t *testing.T) {
		prm, _, a := newPrm(t)
		a.sendErr = errors.New(`script failed (FAULT state) due to an error: at instruction 5 (THROW): unhandled exception: "101: unauthorized"`)

		_, err := Deploy(context.Background(), prm)
		require.ErrorIs(t, err, registry.ErrUnauthorized)
	})

	t.Run("wait failure", func(t *testing.T) {
		prm, _, a := newPrm(t)
		a.waitErr = errors.New("timeout")

		_, err := Deploy(context.Background(), prm)
		require.ErrorIs(t, err, a.waitErr)
	})

	t.Run("fault", func(t *testing.T) {
		prm, _, a := newPrm(t)
		a.res = &state.AppExecResult{Execution: state.Execution{
			VMState:        vmstate.Fault,
			FaultException: `at instruction 5 (THROW): unhandled exception: "101: unauthorized"`,
		}}

		_, err := Deploy(context.Background(), prm)
		require.ErrorIs(t, err, ErrTxFault)
		require.ErrorIs(t, err, registry.ErrUnauthorized)

		a.res.FaultException = ""
		_, err = Deploy(context.Background(), prm)
		require.ErrorIs(t, err, ErrTxFault)
	})

	t.Run("cancelled", func(t *testing.T) {
		prm, _, a := newPrm(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Deploy(ctx, prm)
		require.ErrorIs(t, err, context.Canceled)
		require.Empty(t, a.sent)
	})
}
