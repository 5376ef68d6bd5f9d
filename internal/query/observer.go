package query

import (
	"context"
	"sync"
	"time"
)

// Result is what a consumer of an Observer sees.
type Result[T any] struct {
	Status  Status
	Data    T
	HasData bool
	Err     error
	// IsPlaceholder marks Data as belonging to the previous key.
	IsPlaceholder bool
	UpdatedAt     time.Time
}

func (r Result[T]) Loading() bool { return r.Status == StatusLoading }

// Observer follows one query for one consumer: idle, then loading, then
// success or error. Changing the key re-enters loading. Results for a key that
// has since been replaced are dropped, so the last key set always wins.
type Observer[T any] struct {
	client   *Client
	policy   Policy
	onChange func(Result[T])

	mu     sync.Mutex
	key    string
	gen    uint64
	result Result[T]

	// deliverMu orders callbacks so a superseded result never lands after
	// a newer one.
	deliverMu sync.Mutex
}

// NewObserver creates an idle observer. onChange may be nil; it must not call
// back into the observer.
func NewObserver[T any](c *Client, policy Policy, onChange func(Result[T])) *Observer[T] {
	return &Observer[T]{
		client:   c,
		policy:   policy,
		onChange: onChange,
	}
}

// Result returns the current state.
func (o *Observer[T]) Result() Result[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// SetKey points the observer at key and fetches it with fn unless the cache
// already holds a fresh value. It does not block on the network.
func (o *Observer[T]) SetKey(ctx context.Context, key Key, fn func(context.Context) (T, error)) {
	k := key.String()

	o.mu.Lock()
	if k == o.key && o.result.Status == StatusLoading {
		o.mu.Unlock()
		return
	}
	o.gen++
	gen := o.gen
	o.key = k
	prev := o.result

	if e, ok := Peek[T](o.client, key); ok && e.HasData && e.Status == StatusSuccess &&
		o.client.timeNow().Sub(e.UpdatedAt) < o.policy.StaleTime {
		res := Result[T]{Status: StatusSuccess, Data: e.Data, HasData: true, UpdatedAt: e.UpdatedAt}
		o.result = res
		o.mu.Unlock()
		o.deliver(gen, res)
		return
	}

	loading := Result[T]{Status: StatusLoading}
	if o.policy.KeepPreviousData && prev.HasData {
		loading.Data = prev.Data
		loading.HasData = true
		loading.IsPlaceholder = true
	}
	o.result = loading
	o.mu.Unlock()
	o.deliver(gen, loading)

	go func() {
		v, err := Fetch(ctx, o.client, key, o.policy, fn)

		o.mu.Lock()
		if gen != o.gen {
			o.mu.Unlock()
			return
		}
		var res Result[T]
		if err != nil {
			res = Result[T]{Status: StatusError, Err: err}
			if o.policy.KeepPreviousData && loading.HasData {
				res.Data = loading.Data
				res.HasData = true
				res.IsPlaceholder = true
			}
		} else {
			res = Result[T]{Status: StatusSuccess, Data: v, HasData: true, UpdatedAt: o.client.timeNow()}
		}
		o.result = res
		o.mu.Unlock()
		o.deliver(gen, res)
	}()
}

func (o *Observer[T]) deliver(gen uint64, res Result[T]) {
	if o.onChange == nil {
		return
	}
	o.deliverMu.Lock()
	defer o.deliverMu.Unlock()

	o.mu.Lock()
	current := gen == o.gen
	o.mu.Unlock()
	if current {
		o.onChange(res)
	}
}
