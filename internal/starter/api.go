package starter

import (
	"context"

	"moff.io/dapp-demo/pkg/log"
)

type Startable interface {
	Start(ctx context.Context) error
}

type Stopable interface {
	Stop()
}

// Start starts the elements in order. On the first failure the elements already
// started are stopped in reverse order and the error is returned.
func Start(ctx context.Context, elems ...Startable) error {
	for i, ele := range elems {
		if err := ele.Start(ctx); err != nil {
			Stop(elems[:i]...)
			return err
		}
	}
	return nil
}

// Stop stops elements in reverse order, skipping those that are not Stopable.
func Stop(elems ...Startable) {
	for i := len(elems) - 1; i >= 0; i-- {
		stopable, ok := elems[i].(Stopable)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("stop component: %v", r)
				}
			}()
			stopable.Stop()
		}()
	}
}
