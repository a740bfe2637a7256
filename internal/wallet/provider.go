package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/event"
	"github.com/tidwall/gjson"
)

const (
	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodChainID         = "eth_chainId"
	MethodPersonalSign    = "personal_sign"
)

const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)

// CodeUserRejected is the EIP-1193 code for a request the user declined.
const CodeUserRejected = 4001

// Listener receives the raw payload of a provider event.
type Listener func(payload gjson.Result)

// Provider is an injected EIP-1193 style wallet capability. A nil Provider
// means no wallet is installed.
//
// Request failures that carry a JSON-RPC code implement rpc.Error from
// go-ethereum. On may return a nil subscription when the provider has no
// way to remove listeners.
type Provider interface {
	Name() string
	Request(ctx context.Context, method string, params ...interface{}) (gjson.Result, error)
	On(name string, fn Listener) event.Subscription
}

// Accounts reads an account list payload. Anything that is not a JSON array
// yields no accounts, blank entries are skipped.
func Accounts(payload gjson.Result) []string {
	if !payload.IsArray() {
		return nil
	}
	var accounts []string
	for _, item := range payload.Array() {
		if account := item.String(); account != "" {
			accounts = append(accounts, account)
		}
	}
	return accounts
}
