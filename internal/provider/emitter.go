// Package provider holds the pieces shared by wallet provider adapters.
package provider

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/tidwall/gjson"

	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/log"
)

// Emitter is a listener registry keyed by event name. Listeners run on the
// goroutine calling Emit, in registration order.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string]map[uint64]wallet.Listener
	order     map[string][]uint64
}

func NewEmitter() *Emitter {
	return &Emitter{
		listeners: make(map[string]map[uint64]wallet.Listener),
		order:     make(map[string][]uint64),
	}
}

// On registers fn for name. Unsubscribing the returned subscription removes
// the listener.
func (e *Emitter) On(name string, fn wallet.Listener) event.Subscription {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	if e.listeners[name] == nil {
		e.listeners[name] = make(map[uint64]wallet.Listener)
	}
	e.listeners[name][id] = fn
	e.order[name] = append(e.order[name], id)
	e.mu.Unlock()

	return event.NewSubscription(func(quit <-chan struct{}) error {
		<-quit
		e.remove(name, id)
		return nil
	})
}

func (e *Emitter) remove(name string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners[name], id)
	ids := e.order[name]
	for i, v := range ids {
		if v == id {
			e.order[name] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
}

// Emit delivers payload to the listeners of name. A panicking listener is
// logged and does not stop delivery to the others.
func (e *Emitter) Emit(name string, payload gjson.Result) {
	e.mu.Lock()
	fns := make([]wallet.Listener, 0, len(e.order[name]))
	for _, id := range e.order[name] {
		fns = append(fns, e.listeners[name][id])
	}
	e.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("listener of %s panicked: %v", name, r)
				}
			}()
			fn(payload)
		}()
	}
}

// EmitJSON is Emit for a raw JSON payload.
func (e *Emitter) EmitJSON(name, raw string) {
	e.Emit(name, gjson.Parse(raw))
}

func (e *Emitter) Len(name string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.order[name])
}
