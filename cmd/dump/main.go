package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/proptrust/property-registry/rpc/registry"
	"go.uber.org/zap"
)

// Storage keys of the registry contract.
const (
	ownerKey          = 'o'
	verifierKeyPrefix = 'v'
	propertyKeyPrefix = 'p'
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

	err = _dump(ctx, log, cfg, os.Stdout)
	if err != nil {
		log.Fatal("dump failed", zap.Error(err))
	}
}

// _dump writes the registry state as JSON lines: verifiers first, then
// properties. All records are read at the same state root.
func _dump(ctx context.Context, log *zap.Logger, cfg config, out io.Writer) error {
	b, err := newRemoteBlockChain(ctx, cfg.rpcEndpoint, cfg.timeout)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}

	defer b.close()

	root, err := b.penultStateRoot()
	if err != nil {
		return err
	}

	var (
		owner      util.Uint160
		ownerFound bool
	)

	err = b.iterateContractStorage(root, cfg.contract, []byte{ownerKey}, func(key, value []byte) error {
		if len(key) != 1 {
			return nil
		}

		h, err := util.Uint160DecodeBytesBE(value)
		if err != nil {
			return fmt.Errorf("decode registry owner: %w", err)
		}

		owner, ownerFound = h, true

		return nil
	})
	if err != nil {
		return fmt.Errorf("read registry owner: %w", err)
	}

	if !ownerFound {
		return fmt.Errorf("registry owner is missing in the storage of contract %s", cfg.contract.StringLE())
	}

	var verifiers []util.Uint160

	err = b.iterateContractStorage(root, cfg.contract, []byte{verifierKeyPrefix}, func(key, _ []byte) error {
		h, err := decodeVerifierKey(key)
		if err != nil {
			return err
		}

		verifiers = append(verifiers, h)

		return nil
	})
	if err != nil {
		return fmt.Errorf("list verifiers: %w", err)
	}

	log.Info("registry state",
		zap.Stringer("contract", cfg.contract),
		zap.Stringer("state root", root),
		zap.Stringer("owner", owner),
		zap.Int("verifiers", len(verifiers)))

	enc := json.NewEncoder(out)

	for i := range verifiers {
		err = enc.Encode(verifierRecord{Verifier: address.Uint160ToString(verifiers[i])})
		if err != nil {
			return fmt.Errorf("write verifier: %w", err)
		}
	}

	var n int

	err = b.iterateContractStorage(root, cfg.contract, []byte{propertyKeyPrefix}, func(key, value []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := decodePropertyRecord(value)
		if err != nil {
			return fmt.Errorf("decode property by key %x: %w", key, err)
		}

		n++

		return enc.Encode(rec)
	})
	if err != nil {
		return fmt.Errorf("iterate registry storage: %w", err)
	}

	log.Info("registry is successfully dumped", zap.Int("properties", n))

	return nil
}

type verifierRecord struct {
	Verifier string `json:"verifier"`
}

type propertyRecord struct {
	ID                 string `json:"id"`
	Status             string `json:"status"`
	LegalOwner         string `json:"legalOwner"`
	Address            string `json:"address"`
	LastInspectionDate int64  `json:"lastInspectionDate"`
	VerifiedBy         string `json:"verifiedBy,omitempty"`
}

// decodeVerifierKey extracts verifier account from the storage key of the
// verifier set member.
func decodeVerifierKey(key []byte) (util.Uint160, error) {
	if len(key) != 1+util.Uint160Size || key[0] != verifierKeyPrefix {
		return util.Uint160{}, fmt.Errorf("invalid verifier key %x", key)
	}

	return util.Uint160DecodeBytesBE(key[1:])
}

// decodePropertyRecord decodes raw storage value of the registry contract
// holding a property.
func decodePropertyRecord(value []byte) (propertyRecord, error) {
	var rec propertyRecord

	item, err := stackitem.Deserialize(value)
	if err != nil {
		return rec, fmt.Errorf("deserialize stack item: %w", err)
	}

	var p registry.Property

	err = p.FromStackItem(item)
	if err != nil {
		return rec, err
	}

	rec.ID = p.ID
	rec.Status = statusString(&p)
	rec.LegalOwner = address.Uint160ToString(p.LegalOwner)
	rec.Address = p.Address
	rec.LastInspectionDate = p.LastInspectionDate.Int64()
	if p.VerifiedBy != nil {
		rec.VerifiedBy = address.Uint160ToString(*p.VerifiedBy)
	}

	return rec, nil
}

func statusString(p *registry.Property) string {
	switch {
	case p.Status.Cmp(registry.StatusUnverified) == 0:
		return "unverified"
	case p.Status.Cmp(registry.StatusVerified) == 0:
		return "verified"
	case p.Status.Cmp(registry.StatusRejected) == 0:
		return "rejected"
	default:
		return "unknown(" + p.Status.String() + ")"
	}
}
