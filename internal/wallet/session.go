// Package wallet keeps the connection state between the demo and an
// injected wallet provider.
package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/chains"
	"moff.io/dapp-demo/internal/i18n"
	"moff.io/dapp-demo/pkg/common"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
)

const DefaultRequestTimeout = 5 * time.Minute

type Option func(*Session)

// WithTranslator renders descriptor messages in the translator's locale.
func WithTranslator(tr *i18n.Translator) Option {
	return func(s *Session) {
		if tr != nil {
			s.tr = tr
		}
	}
}

// WithRequestTimeout bounds every provider call. Zero disables the bound.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.timeout = timeout
	}
}

// Session is the wallet connection lifecycle of one mounted UI.
type Session struct {
	provider Provider
	tr       *i18n.Translator
	timeout  time.Duration

	mu      sync.Mutex
	state   connectionState
	version uint64
	// generation is bumped by Disconnect and Teardown; connect results
	// carrying an older generation are dropped.
	generation uint64
	// mount identifies the current Initialize, handlers of older mounts
	// are ignored.
	mount   uint64
	mounted bool
	subs    []event.Subscription

	feed event.Feed
}

// NewSession builds a session around provider, which may be nil.
func NewSession(provider Provider, opts ...Option) *Session {
	s := &Session{
		provider: provider,
		tr:       i18n.Default,
		timeout:  DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) providerName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// Start initializes the session as part of the application lifecycle.
func (s *Session) Start(ctx context.Context) error {
	s.Initialize(ctx)
	return nil
}

// Stop tears the session down as part of the application lifecycle.
func (s *Session) Stop() {
	s.Teardown()
}

// Initialize subscribes to provider events and restores an account the user
// already authorized. Probe failures are only logged. Calling it again
// before Teardown does nothing.
func (s *Session) Initialize(ctx context.Context) {
	if s.provider == nil {
		log.Info("wallet provider not detected, session stays disconnected")
		return
	}
	s.mu.Lock()
	if s.mounted {
		s.mu.Unlock()
		log.Debug("wallet session already initialized")
		return
	}
	s.mount++
	mount := s.mount
	s.mounted = true
	s.mu.Unlock()

	subs := []event.Subscription{
		s.provider.On(EventAccountsChanged, func(payload gjson.Result) {
			s.handleAccountsChanged(mount, Accounts(payload))
		}),
		s.provider.On(EventChainChanged, func(payload gjson.Result) {
			s.handleChainChanged(mount, payload.String())
		}),
	}
	s.mu.Lock()
	if !s.mounted || s.mount != mount {
		s.mu.Unlock()
		unsubscribe(subs)
		return
	}
	for _, sub := range subs {
		if sub != nil {
			s.subs = append(s.subs, sub)
		}
	}
	generation := s.generation
	s.mu.Unlock()

	if result, err := s.request(ctx, MethodAccounts); err != nil {
		log.Warnf("probe %s on %s failed: %v", MethodAccounts, s.provider.Name(), err)
	} else if accounts := Accounts(result); len(accounts) > 0 {
		s.update(generation, func(st *connectionState) {
			applyAccounts(st, accounts, s.tr)
		})
		log.Infof("wallet already authorized: %s", common.MaskMiddle(accounts[0], 6))
	}

	if result, err := s.request(ctx, MethodChainID); err != nil {
		log.Warnf("probe %s on %s failed: %v", MethodChainID, s.provider.Name(), err)
	} else if chainID := result.String(); chainID != "" {
		s.update(generation, func(st *connectionState) {
			st.chainID = chainID
		})
	}
}

// Connect asks the provider for account access and returns the resulting
// snapshot. Failures end up in Snapshot.LastError. A Connect issued while
// another is in flight returns the current snapshot.
func (s *Session) Connect(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.state.connecting {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		log.Debug("wallet connect already in flight")
		return snap
	}
	s.state.lastError = nil
	s.state.connecting = true
	s.version++
	generation := s.generation
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.feed.Send(snap)

	if s.provider == nil {
		s.update(generation, func(st *connectionState) {
			st.account = ""
			st.connecting = false
			st.lastError = &Descriptor{Kind: KindProviderAbsent, Message: s.tr.Sprintf(i18n.MsgProviderAbsent)}
		})
		return s.Snapshot()
	}

	result, err := s.request(ctx, MethodRequestAccounts)
	if err != nil {
		desc := s.classify(err)
		log.Warnf("wallet connect via %s failed: %v", s.provider.Name(), err)
		s.update(generation, func(st *connectionState) {
			st.account = ""
			st.connecting = false
			st.lastError = desc
		})
		return s.Snapshot()
	}

	accounts := Accounts(result)
	if !s.update(generation, func(st *connectionState) { applyAccounts(st, accounts, s.tr) }) {
		log.Infof("dropping stale wallet connect result from %s", s.provider.Name())
		return s.Snapshot()
	}
	if len(accounts) > 0 {
		log.Infof("wallet connected: %s", common.MaskMiddle(accounts[0], 6))
		if chain, err := s.request(ctx, MethodChainID); err != nil {
			log.Warnf("read %s after connect failed: %v", MethodChainID, err)
		} else if chainID := chain.String(); chainID != "" {
			s.update(generation, func(st *connectionState) { st.chainID = chainID })
		}
	}
	s.update(generation, func(st *connectionState) { st.connecting = false })
	return s.Snapshot()
}

// Disconnect forgets the account locally. Provider side authorization is
// left untouched, the next Connect may succeed without a prompt.
func (s *Session) Disconnect() Snapshot {
	s.mu.Lock()
	s.generation++
	s.state.account = ""
	s.state.chainID = ""
	s.state.connecting = false
	s.state.lastError = &Descriptor{Kind: KindDisconnected, Message: s.tr.Sprintf(i18n.MsgDisconnected)}
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	log.Info("wallet disconnected by user")
	s.feed.Send(snap)
	return snap
}

// Teardown releases the provider subscriptions. Events delivered afterwards,
// even straight into a retained listener, leave the state alone. It is safe
// to call without Initialize.
func (s *Session) Teardown() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	wasMounted := s.mounted
	s.mounted = false
	s.generation++
	var snap *Snapshot
	if s.state.connecting {
		s.state.connecting = false
		s.version++
		current := s.snapshotLocked()
		snap = &current
	}
	s.mu.Unlock()

	unsubscribe(subs)
	if wasMounted {
		log.Infof("wallet session released %d provider subscriptions", len(subs))
	}
	if snap != nil {
		s.feed.Send(*snap)
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Watch delivers a snapshot after every state change. Receivers must keep
// draining ch until they unsubscribe.
func (s *Session) Watch(ch chan<- Snapshot) event.Subscription {
	return s.feed.Subscribe(ch)
}

func (s *Session) handleAccountsChanged(mount uint64, accounts []string) {
	s.mu.Lock()
	if !s.mounted || s.mount != mount {
		s.mu.Unlock()
		log.Debug("ignoring accountsChanged after teardown")
		return
	}
	applyAccounts(&s.state, accounts, s.tr)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if len(accounts) == 0 {
		log.Info("wallet reported no accounts")
	} else {
		log.Infof("wallet account changed: %s", common.MaskMiddle(accounts[0], 6))
	}
	s.feed.Send(snap)
}

func (s *Session) handleChainChanged(mount uint64, chainID string) {
	s.mu.Lock()
	if !s.mounted || s.mount != mount {
		s.mu.Unlock()
		log.Debug("ignoring chainChanged after teardown")
		return
	}
	s.state.chainID = chainID
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	log.Infof("wallet chain changed: %s", chainID)
	s.feed.Send(snap)
}

// update applies fn when generation is still current and reports whether it
// did.
func (s *Session) update(generation uint64, fn func(st *connectionState)) bool {
	s.mu.Lock()
	if generation != s.generation {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.feed.Send(snap)
	return true
}

func (s *Session) request(ctx context.Context, method string) (gjson.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	result, err := s.provider.Request(ctx, method)
	if err != nil {
		return gjson.Result{}, err
	}
	return result, nil
}

func (s *Session) classify(err error) *Descriptor {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == CodeUserRejected {
		return &Descriptor{Kind: KindUserRejected, Message: s.tr.Sprintf(i18n.MsgUserRejected)}
	}
	return &Descriptor{Kind: KindRequestFailed, Message: s.tr.Sprintf(i18n.MsgRequestFailed, err)}
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Account:    s.state.account,
		ChainID:    s.state.chainID,
		Connecting: s.state.connecting,
		Status:     s.state.status(),
		Provider:   s.providerName(),
		Version:    s.version,
	}
	if s.state.lastError != nil {
		desc := *s.state.lastError
		snap.LastError = &desc
	}
	if snap.ChainID != "" {
		if chain := chains.Lookup(snap.ChainID); chain != nil {
			snap.ChainName = chain.Name
		} else {
			snap.ChainName = s.tr.Sprintf(i18n.MsgUnknownChain, snap.ChainID)
		}
	}
	return snap
}

// applyAccounts is shared by every path that learns an account list.
func applyAccounts(st *connectionState, accounts []string, tr *i18n.Translator) {
	if len(accounts) == 0 {
		st.account = ""
		st.lastError = &Descriptor{Kind: KindDisconnected, Message: tr.Sprintf(i18n.MsgWalletDisconnected)}
		return
	}
	st.account = accounts[0]
	st.lastError = nil
}

func unsubscribe(subs []event.Subscription) {
	for _, sub := range subs {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}
