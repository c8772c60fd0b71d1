package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/proptrust/property-registry/contracts"
	"github.com/proptrust/property-registry/deploy"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr, err := _deploy(ctx, log, cfg)
	if err != nil {
		log.Fatal("deployment failed", zap.Error(err))
	}

	fmt.Println(addr.StringLE())
}

func _deploy(ctx context.Context, log *zap.Logger, cfg config) (util.Uint160, error) {
	ctr, err := contracts.ReadDir(cfg.contractDir)
	if err != nil {
		return util.Uint160{}, err
	}

	acc, err := openAccount(cfg)
	if err != nil {
		return util.Uint160{}, err
	}

	c, err := rpcclient.New(ctx, cfg.rpcEndpoint, rpcclient.Options{
		DialTimeout:    cfg.timeout,
		RequestTimeout: cfg.timeout,
	})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("RPC client dial: %w", err)
	}
	defer c.Close()

	err = c.Init()
	if err != nil {
		return util.Uint160{}, fmt.Errorf("RPC client init: %w", err)
	}

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init actor: %w", err)
	}

	log.Info("deploying registry contract", zap.String("deployer", acc.Address))

	return deploy.Deploy(ctx, deploy.Prm{
		Logger:     log,
		Blockchain: c,
		Actor:      act,
		Contract:   ctr,
		Owner:      cfg.owner,
		Address:    cfg.address,
	})
}

// openAccount reads the wallet and decrypts the deployer account. The wallet
// is left open on success: closing it wipes private keys of its accounts.
func openAccount(cfg config) (*wallet.Account, error) {
	w, err := wallet.NewWalletFromFile(cfg.walletPath)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	h := cfg.account
	if h.Equals(util.Uint160{}) {
		h = w.GetChangeAddress()
	}

	acc := w.GetAccount(h)
	if acc == nil {
		w.Close()
		return nil, fmt.Errorf("account %s is missing in the wallet", address.Uint160ToString(h))
	}

	err = acc.Decrypt(cfg.password, w.Scrypt)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	return acc, nil
}
