package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "PROPREG"

const (
	cfgRPC         = "rpc"
	cfgWallet      = "wallet"
	cfgAccount     = "account"
	cfgPassword    = "password"
	cfgContractDir = "contract-dir"
	cfgOwner       = "owner"
	cfgAddress     = "address"
	cfgTimeout     = "timeout"
)

type config struct {
	rpcEndpoint string
	walletPath  string
	account     util.Uint160 // zero means wallet default
	password    string
	contractDir string
	owner       util.Uint160 // zero means deployer
	address     util.Uint160 // zero means initial deployment
	timeout     time.Duration
}

// loadConfig reads command configuration from the command line arguments.
// Every flag can be overridden by PROPREG_<FLAG> environment variable with
// dashes replaced by underscores. Password should be passed through the
// environment only.
func loadConfig(args []string) (config, error) {
	var cfg config

	flags := pflag.NewFlagSet("deploy", pflag.ContinueOnError)
	flags.String(cfgRPC, "", "Network address of the Neo RPC server")
	flags.String(cfgWallet, "", "Path to NEP-6 wallet with the deployer account")
	flags.String(cfgAccount, "", "Deployer account address (default account of the wallet if empty)")
	flags.String(cfgContractDir, "contracts/registry", "Directory with compiled contract.nef and manifest.json")
	flags.String(cfgOwner, "", "Registry owner address (deployer if empty)")
	flags.String(cfgAddress, "", "Address of the deployed registry to update (Neo address or LE hex, empty for initial deployment)")
	flags.Duration(cfgTimeout, 15*time.Second, "Dial and request timeout")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return cfg, fmt.Errorf("bind flags: %w", err)
	}

	if err := v.BindEnv(cfgPassword); err != nil {
		return cfg, fmt.Errorf("bind password: %w", err)
	}

	cfg.rpcEndpoint = v.GetString(cfgRPC)
	if cfg.rpcEndpoint == "" {
		return cfg, errors.New("missing Neo RPC endpoint")
	}

	cfg.walletPath = v.GetString(cfgWallet)
	if cfg.walletPath == "" {
		return cfg, errors.New("missing wallet")
	}

	var err error

	if s := v.GetString(cfgAccount); s != "" {
		cfg.account, err = address.StringToUint160(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid account address '%s': %w", s, err)
		}
	}

	if s := v.GetString(cfgOwner); s != "" {
		cfg.owner, err = address.StringToUint160(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid owner address '%s': %w", s, err)
		}
	}

	if s := v.GetString(cfgAddress); s != "" {
		cfg.address, err = parseContract(s)
		if err != nil {
			return cfg, fmt.Errorf("invalid registry address '%s': %w", s, err)
		}
	}

	cfg.password = v.GetString(cfgPassword)
	cfg.contractDir = v.GetString(cfgContractDir)

	cfg.timeout = v.GetDuration(cfgTimeout)
	if cfg.timeout <= 0 {
		return cfg, fmt.Errorf("non-positive timeout %s", cfg.timeout)
	}

	return cfg, nil
}

func parseContract(s string) (util.Uint160, error) {
	if h, err := address.StringToUint160(s); err == nil {
		return h, nil
	}

	return util.Uint160DecodeStringLE(strings.TrimPrefix(s, "0x"))
}
