package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// SetSerialized serializes data and puts it into contract storage.
func SetSerialized(ctx storage.Context, key any, value any) {
	data := std.Serialize(value)
	storage.Put(ctx, key, data)
}

// KeyExists checks whether contract storage has any value by the given key.
func KeyExists(ctx storage.Context, key any) bool {
	return storage.Get(ctx, key) != nil
}

// PutFlag marks the key as present in contract storage. It returns false if
// the key has already been there.
func PutFlag(ctx storage.Context, key []byte) bool {
	if KeyExists(ctx, key) {
		return false
	}
	storage.Put(ctx, key, []byte{1})
	return true
}

// DeleteFlag removes the key from contract storage. It returns false if there
// was nothing to remove.
func DeleteFlag(ctx storage.Context, key []byte) bool {
	if !KeyExists(ctx, key) {
		return false
	}
	storage.Delete(ctx, key)
	return true
}
