package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Sender returns the account that signed the current transaction first and
// pays for it.
func Sender() interop.Hash160 {
	return runtime.GetScriptContainer().Sender
}

// WitnessedSender returns the transaction sender if its witness is valid for
// the current invocation. Otherwise, it panics with panicMsg.
func WitnessedSender(panicMsg string) interop.Hash160 {
	sender := Sender()
	CheckWitnessWithPanic(sender, panicMsg)
	return sender
}

// CheckWitnessWithPanic checks witness of the passed account and panics with
// panicMsg on fail.
func CheckWitnessWithPanic(account interop.Hash160, panicMsg string) {
	if !runtime.CheckWitness(account) {
		panic(panicMsg)
	}
}
