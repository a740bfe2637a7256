package databus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"

	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/log"
)

// WalletEvent is a session snapshot as published on the bus.
type WalletEvent struct {
	Snapshot wallet.Snapshot `json:"snapshot"`
	At       time.Time       `json:"at"`

	topic string
}

func (e *WalletEvent) Serialize() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("marshal wallet event: %v", err)
		return nil
	}
	return data
}

func (e *WalletEvent) Topic() string {
	return e.topic
}

func (e *WalletEvent) Key() string {
	return e.Snapshot.Provider
}

// SessionSink publishes the current snapshot of a session and then every
// change until stopped. Snapshots older than the last published one are
// dropped.
type SessionSink struct {
	bus     *DataBus
	topic   string
	session *wallet.Session
	now     func() time.Time

	mu   sync.Mutex
	sub  event.Subscription
	done chan struct{}
}

func NewSessionSink(bus *DataBus, topic string, session *wallet.Session) *SessionSink {
	return &SessionSink{bus: bus, topic: topic, session: session, now: time.Now}
}

func (s *SessionSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return nil
	}
	if s.bus.Local() {
		log.Infof("wallet snapshots for %s are only logged", s.topic)
	}
	ch := make(chan wallet.Snapshot, 64)
	s.sub = s.session.Watch(ch)
	s.done = make(chan struct{})
	go s.loop(ch, s.sub, s.done)
	// The session may already hold a restored account.
	ch <- s.session.Snapshot()
	return nil
}

// Stop ends the subscription and closes the bus.
func (s *SessionSink) Stop() {
	s.mu.Lock()
	sub, done := s.sub, s.done
	s.sub = nil
	s.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
		<-done
	}
	s.bus.Close()
}

func (s *SessionSink) loop(ch <-chan wallet.Snapshot, sub event.Subscription, done chan struct{}) {
	defer close(done)
	var (
		last      uint64
		published bool
	)
	for {
		select {
		case snap := <-ch:
			if published && snap.Version <= last {
				continue
			}
			last, published = snap.Version, true
			e := &WalletEvent{Snapshot: snap, At: s.now(), topic: s.topic}
			if err := s.bus.Publish(e); err != nil {
				log.Warnf("publish wallet event v%d: %v", snap.Version, err)
			}
		case <-sub.Err():
			return
		}
	}
}
