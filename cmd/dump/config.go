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
	cfgRPC      = "rpc"
	cfgContract = "contract"
	cfgTimeout  = "timeout"
)

type config struct {
	rpcEndpoint string
	contract    util.Uint160
	timeout     time.Duration
}

// loadConfig reads command configuration from the command line arguments.
// Every flag can be overridden by PROPREG_<FLAG> environment variable with
// dashes replaced by underscores.
func loadConfig(args []string) (config, error) {
	var cfg config

	flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	flags.String(cfgRPC, "", "Network address of the Neo RPC server")
	flags.String(cfgContract, "", "Property Registry contract address (Neo address or LE hex)")
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

	cfg.rpcEndpoint = v.GetString(cfgRPC)
	if cfg.rpcEndpoint == "" {
		return cfg, errors.New("missing Neo RPC endpoint")
	}

	rawContract := v.GetString(cfgContract)
	if rawContract == "" {
		return cfg, errors.New("missing contract address")
	}

	var err error
	cfg.contract, err = parseContract(rawContract)
	if err != nil {
		return cfg, fmt.Errorf("invalid contract address '%s': %w", rawContract, err)
	}

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
