package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	owner := util.Uint160{1, 2, 3}

	t.Run("flags", func(t *testing.T) {
		cfg, err := loadConfig([]string{
			"--rpc", "http://localhost:30333",
			"--wallet", "wallet.json",
			"--owner", address.Uint160ToString(owner),
		})
		require.NoError(t, err)
		require.Equal(t, "http://localhost:30333", cfg.rpcEndpoint)
		require.Equal(t, "wallet.json", cfg.walletPath)
		require.Equal(t, owner, cfg.owner)
		require.Equal(t, util.Uint160{}, cfg.account)
		require.Equal(t, util.Uint160{}, cfg.address)
		require.Equal(t, "contracts/registry", cfg.contractDir)
		require.Equal(t, 15*time.Second, cfg.timeout)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("PROPREG_RPC", "http://node:30333")
		t.Setenv("PROPREG_WALLET", "/etc/registry/wallet.json")
		t.Setenv("PROPREG_ACCOUNT", address.Uint160ToString(owner))
		t.Setenv("PROPREG_PASSWORD", "secret")
		t.Setenv("PROPREG_CONTRACT_DIR", "/opt/registry")

		cfg, err := loadConfig(nil)
		require.NoError(t, err)
		require.Equal(t, "http://node:30333", cfg.rpcEndpoint)
		require.Equal(t, "/etc/registry/wallet.json", cfg.walletPath)
		require.Equal(t, owner, cfg.account)
		require.Equal(t, "secret", cfg.password)
		require.Equal(t, "/opt/registry", cfg.contractDir)
	})

	t.Run("registry address", func(t *testing.T) {
		registry := util.Uint160{4, 5, 6}
		base := []string{"--rpc", "http://localhost:30333", "--wallet", "wallet.json"}

		cfg, err := loadConfig(append(base, "--address", "0x"+registry.StringLE()))
		require.NoError(t, err)
		require.Equal(t, registry, cfg.address)

		t.Setenv("PROPREG_ADDRESS", address.Uint160ToString(registry))
		cfg, err = loadConfig(base)
		require.NoError(t, err)
		require.Equal(t, registry, cfg.address)
	})

	for _, tc := range []struct {
		name string
		args []string
	}{
		{"missing rpc", []string{"--wallet", "wallet.json"}},
		{"missing wallet", []string{"--rpc", "http://localhost:30333"}},
		{"invalid owner", []string{"--rpc", "http://localhost:30333", "--wallet", "wallet.json", "--owner", "NotAnAddress"}},
		{"invalid address", []string{"--rpc", "http://localhost:30333", "--wallet", "wallet.json", "--address", "NotAnAddress"}},
		{"invalid account", []string{"--rpc", "http://localhost:30333", "--wallet", "wallet.json", "--account", "NotAnAddress"}},
		{"invalid timeout", []string{"--rpc", "http://localhost:30333", "--wallet", "wallet.json", "--timeout", "-1s"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadConfig(tc.args)
			require.Error(t, err)
		})
	}
}

func TestOpenAccount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.json")

	w, err := wallet.NewWallet(path)
	require.NoError(t, err)
	w.Scrypt.N, w.Scrypt.R, w.Scrypt.P = 2, 1, 1

	acc, err := wallet.NewAccount()
	require.NoError(t, err)
	require.NoError(t, acc.Encrypt("pass", w.Scrypt))
	w.AddAccount(acc)
	require.NoError(t, w.Save())
	w.Close()

	res, err := openAccount(config{walletPath: path, password: "pass"})
	require.NoError(t, err)
	require.Equal(t, acc.ScriptHash(), res.ScriptHash())
	require.True(t, res.CanSign())
	require.NotNil(t, res.PrivateKey())
	require.Equal(t, acc.ScriptHash(), res.PrivateKey().GetScriptHash())

	_, err = openAccount(config{walletPath: path, password: "wrong"})
	require.Error(t, err)

	_, err = openAccount(config{walletPath: path, password: "pass", account: util.Uint160{1}})
	require.Error(t, err)

	_, err = openAccount(config{walletPath: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}
