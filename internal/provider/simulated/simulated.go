// Package simulated is an in-process wallet that grants fixed accounts
// after a delay, standing in for a browser extension.
package simulated

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/provider"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/log"
)

const Name = "simulated"

type Provider struct {
	*provider.Emitter

	delay time.Duration

	mu       sync.Mutex
	accounts []string
	chainID  string
	granted  bool
	reject   bool
	failure  error
}

var _ wallet.Provider = (*Provider)(nil)

func New(cfg config.Simulated) *Provider {
	return &Provider{
		Emitter:  provider.NewEmitter(),
		delay:    cfg.Delay,
		accounts: append([]string(nil), cfg.Accounts...),
		chainID:  cfg.ChainID,
		granted:  cfg.PreAuthorized,
	}
}

func (p *Provider) Name() string {
	return Name
}

// Request answers the subset of EIP-1193 the demo uses. Unknown methods
// return null.
func (p *Provider) Request(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	switch method {
	case wallet.MethodRequestAccounts:
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return gjson.Result{}, ctx.Err()
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.failure != nil {
			return gjson.Result{}, p.failure
		}
		if p.reject {
			return gjson.Result{}, provider.UserRejected("")
		}
		p.granted = true
		return jsonResult(p.accounts)
	case wallet.MethodAccounts:
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.granted {
			return jsonResult([]string{})
		}
		return jsonResult(p.accounts)
	case wallet.MethodChainID:
		p.mu.Lock()
		defer p.mu.Unlock()
		return jsonResult(p.chainID)
	default:
		log.Warnf("simulated wallet: unhandled method %s %v", method, params)
		return gjson.Parse("null"), nil
	}
}

// Reject makes the next account requests fail with the user rejected code.
func (p *Provider) Reject(reject bool) {
	p.mu.Lock()
	p.reject = reject
	p.mu.Unlock()
}

// FailWith makes account requests fail with err until reset with nil.
func (p *Provider) FailWith(err error) {
	p.mu.Lock()
	p.failure = err
	p.mu.Unlock()
}

// SetAccounts replaces the wallet accounts and notifies listeners when the
// dapp was granted access. An empty list revokes the grant.
func (p *Provider) SetAccounts(accounts ...string) {
	p.mu.Lock()
	p.accounts = append([]string(nil), accounts...)
	notify := p.granted
	if len(accounts) == 0 {
		p.granted = false
	}
	p.mu.Unlock()
	if notify {
		payload, _ := jsonResult(accounts)
		p.Emit(wallet.EventAccountsChanged, payload)
	}
}

// SetChain switches the network and notifies listeners.
func (p *Provider) SetChain(chainID string) {
	p.mu.Lock()
	p.chainID = chainID
	p.mu.Unlock()
	payload, _ := jsonResult(chainID)
	p.Emit(wallet.EventChainChanged, payload)
}

func jsonResult(v interface{}) (gjson.Result, error) {
	if list, ok := v.([]string); ok && list == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(data), nil
}
