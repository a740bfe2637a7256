// Package rpcnode exposes an Ethereum JSON-RPC node as a wallet provider.
// Accounts unlocked in the node keystore count as authorized, so
// eth_requestAccounts is answered with eth_accounts.
package rpcnode

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/tidwall/gjson"
	"go.uber.org/ratelimit"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/provider"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

const Name = "rpc"

type Provider struct {
	*provider.Emitter

	client       *rpc.Client
	limiter      ratelimit.Limiter
	pollInterval time.Duration

	mu       sync.Mutex
	accounts []string
	chainID  string
	cancel   context.CancelFunc
	done     chan struct{}
}

var _ wallet.Provider = (*Provider)(nil)

// Dial connects to the node at cfg.URL (http, ws or ipc).
func Dial(ctx context.Context, cfg config.RPC) (*Provider, error) {
	client, err := rpc.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.URL)
	}
	return New(client, cfg), nil
}

// New wraps an established client. The provider owns it from now on.
func New(client *rpc.Client, cfg config.RPC) *Provider {
	limiter := ratelimit.NewUnlimited()
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond)
	}
	return &Provider{
		Emitter:      provider.NewEmitter(),
		client:       client,
		limiter:      limiter,
		pollInterval: cfg.PollInterval,
	}
}

func (p *Provider) Name() string {
	return Name
}

func (p *Provider) Request(ctx context.Context, method string, params ...interface{}) (gjson.Result, error) {
	if method == wallet.MethodRequestAccounts {
		method = wallet.MethodAccounts
	}
	p.limiter.Take()
	var raw json.RawMessage
	if err := p.client.CallContext(ctx, &raw, method, params...); err != nil {
		return gjson.Result{}, err
	}
	if len(raw) == 0 {
		return gjson.Parse("null"), nil
	}
	return gjson.ParseBytes(raw), nil
}

// Start records the current accounts and chain, then polls the node and
// emits accountsChanged and chainChanged whenever they differ.
func (p *Provider) Start(ctx context.Context) error {
	if p.pollInterval <= 0 {
		log.Info("rpc wallet: polling disabled")
		return nil
	}
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return nil
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.mu.Unlock()

	p.poll(ctx, false)
	go p.watch(watchCtx)
	return nil
}

// Stop ends the watcher and closes the client.
func (p *Provider) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
	p.client.Close()
}

func (p *Provider) watch(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, true)
		}
	}
}

func (p *Provider) poll(ctx context.Context, notify bool) {
	if res, err := p.Request(ctx, wallet.MethodAccounts); err != nil {
		if ctx.Err() == nil {
			log.Warnf("rpc wallet: poll %s: %v", wallet.MethodAccounts, err)
		}
	} else {
		accounts := wallet.Accounts(res)
		p.mu.Lock()
		changed := !reflect.DeepEqual(normalize(accounts), normalize(p.accounts))
		p.accounts = accounts
		p.mu.Unlock()
		if changed && notify {
			p.EmitJSON(wallet.EventAccountsChanged, res.Raw)
		}
	}

	if res, err := p.Request(ctx, wallet.MethodChainID); err != nil {
		if ctx.Err() == nil {
			log.Warnf("rpc wallet: poll %s: %v", wallet.MethodChainID, err)
		}
	} else if chainID := res.String(); chainID != "" {
		p.mu.Lock()
		changed := chainID != p.chainID
		p.chainID = chainID
		p.mu.Unlock()
		if changed && notify {
			p.Emit(wallet.EventChainChanged, res)
		}
	}
}

func normalize(accounts []string) []string {
	if len(accounts) == 0 {
		return nil
	}
	return accounts
}
