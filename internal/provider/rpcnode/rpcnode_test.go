package rpcnode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/wallet"
)

type rejectedError struct{}

func (rejectedError) Error() string  { return "User rejected the request." }
func (rejectedError) ErrorCode() int { return wallet.CodeUserRejected }

type ethService struct {
	mu       sync.Mutex
	accounts []string
	chainID  string
	reject   bool
}

func (s *ethService) Accounts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reject {
		return nil, rejectedError{}
	}
	if s.accounts == nil {
		return []string{}, nil
	}
	return s.accounts, nil
}

func (s *ethService) ChainId() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

func (s *ethService) set(chainID string, accounts ...string) {
	s.mu.Lock()
	s.chainID = chainID
	s.accounts = accounts
	s.mu.Unlock()
}

func newNode(t *testing.T, svc *ethService, cfg config.RPC) *Provider {
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)
	return New(rpc.DialInProc(server), cfg)
}

func TestRequest(t *testing.T) {
	svc := &ethService{}
	svc.set("0x5", "0xaaa")
	p := newNode(t, svc, config.RPC{})
	defer p.Stop()
	ctx := context.Background()

	res, err := p.Request(ctx, wallet.MethodRequestAccounts)
	require.NoError(t, err)
	assert.Equal(t, []string{"0xaaa"}, wallet.Accounts(res))

	res, err = p.Request(ctx, wallet.MethodChainID)
	require.NoError(t, err)
	assert.Equal(t, "0x5", res.String())
}

func TestRequestErrorCode(t *testing.T) {
	svc := &ethService{reject: true}
	p := newNode(t, svc, config.RPC{RequestsPerSecond: 100})
	defer p.Stop()

	s := wallet.NewSession(p)
	snap := s.Connect(context.Background())
	require.NotNil(t, snap.LastError)
	assert.Equal(t, wallet.KindUserRejected, snap.LastError.Kind)
}

func TestUnknownMethod(t *testing.T) {
	p := newNode(t, &ethService{}, config.RPC{})
	defer p.Stop()

	_, err := p.Request(context.Background(), "eth_sendTransaction")
	var rpcErr rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.ErrorCode())
}

func TestWatcherEmitsChanges(t *testing.T) {
	svc := &ethService{}
	svc.set("0x1", "0xaaa")
	p := newNode(t, svc, config.RPC{PollInterval: 10 * time.Millisecond})

	var mu sync.Mutex
	var accounts [][]string
	var chainIDs []string
	p.On(wallet.EventAccountsChanged, func(payload gjson.Result) {
		mu.Lock()
		accounts = append(accounts, wallet.Accounts(payload))
		mu.Unlock()
	})
	p.On(wallet.EventChainChanged, func(payload gjson.Result) {
		mu.Lock()
		chainIDs = append(chainIDs, payload.String())
		mu.Unlock()
	})

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	svc.set("0x5")
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(accounts) == 1 && len(chainIDs) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.Empty(t, accounts[0])
	assert.Equal(t, "0x5", chainIDs[0])
	mu.Unlock()
}

func TestSessionFollowsNode(t *testing.T) {
	svc := &ethService{}
	svc.set("0x1", "0xaaa")
	p := newNode(t, svc, config.RPC{PollInterval: 10 * time.Millisecond})
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	s := wallet.NewSession(p)
	s.Initialize(context.Background())
	defer s.Teardown()
	require.Equal(t, "0xaaa", s.Snapshot().Account)

	svc.set("0x1", "0xbbb")
	assert.Eventually(t, func() bool {
		return s.Snapshot().Account == "0xbbb"
	}, time.Second, 5*time.Millisecond)
}
