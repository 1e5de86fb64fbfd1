package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// CheckWitness checks witness of the passed account.
// It panics with ErrUnauthorized message on fail.
func CheckWitness(account interop.Hash160) {
	if !runtime.CheckWitness(account) {
		panic(ErrUnauthorized)
	}
}

// CheckAddress panics with ErrInvalidAddress if the passed value is not
// a 20-byte script hash.
func CheckAddress(addr interop.Hash160) {
	if len(addr) != interop.Hash160Len {
		panic(ErrInvalidAddress)
	}
}
