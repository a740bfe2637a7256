package concurrent

import "context"

type Limiter interface {
	// AddContext enqueue one working credential, giving up when ctx is done.
	AddContext(ctx context.Context) error
	// Done dequeue one working credential.
	Done()
}

type limiter struct {
	working chan struct{}
}

func NewLimiter(maxConcurrency int) Limiter {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &limiter{
		working: make(chan struct{}, maxConcurrency),
	}
}

func (in *limiter) AddContext(ctx context.Context) error {
	select {
	case in.working <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (in *limiter) Done() {
	<-in.working
}
