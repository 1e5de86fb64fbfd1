package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// GetInt returns the integer stored under key, zero if missing.
func GetInt(ctx storage.Context, key any) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}
	return v.(int)
}

// PutInt stores v under key. Zero values are deleted, so a missing key and
// a zero amount are indistinguishable.
func PutInt(ctx storage.Context, key any, v int) {
	if v == 0 {
		storage.Delete(ctx, key)
		return
	}
	storage.Put(ctx, key, v)
}

// GetHash returns the script hash stored under key. It panics with
// ErrNotInitialized if the key is missing.
func GetHash(ctx storage.Context, key any) interop.Hash160 {
	v := storage.Get(ctx, key)
	if v == nil {
		panic(ErrNotInitialized)
	}
	return v.(interop.Hash160)
}

// AccountKey prefixes the account script hash.
func AccountKey(prefix byte, addr interop.Hash160) []byte {
	return append([]byte{prefix}, addr...)
}
