package docstore

import (
	"context"
	"sync"

	"giveaway/internal/metrics"

	"github.com/google/logger"
)

// Subscription is a standing query. It must be closed by its owner.
type Subscription struct {
	store  *Store
	query  Query
	fn     func([]Document)
	wakeCh chan struct{}

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// Subscribe registers fn to receive the result of q now and again after every
// committed write to q's collection. Snapshots are delivered one at a time from
// a dedicated goroutine; bursts of writes collapse into one snapshot.
//
// fn must not call Close on its own subscription.
func (s *Store) Subscribe(q Query, fn func([]Document)) (*Subscription, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		store:   s,
		query:   q,
		fn:      fn,
		wakeCh:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	s.mu.Lock()
	set, ok := s.subs[q.collection]
	if !ok {
		set = make(map[*Subscription]struct{})
		s.subs[q.collection] = set
	}
	set[sub] = struct{}{}
	s.mu.Unlock()

	metrics.LiveSubscriptions.Inc()
	sub.wake()
	go sub.run()
	return sub, nil
}

// Close deregisters the subscription and waits for its goroutine to exit.
// No snapshot is delivered after Close returns. Close is idempotent.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		if set, ok := sub.store.subs[sub.query.collection]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(sub.store.subs, sub.query.collection)
			}
		}
		sub.store.mu.Unlock()

		sub.cancel()
		metrics.LiveSubscriptions.Dec()
	})
	<-sub.stopped
}

func (sub *Subscription) wake() {
	select {
	case sub.wakeCh <- struct{}{}:
	default:
		// a snapshot is already pending
	}
}

func (sub *Subscription) run() {
	defer close(sub.stopped)

	for {
		select {
		case <-sub.ctx.Done():
			return
		case <-sub.wakeCh:
		}

		docs, err := sub.store.Query(sub.ctx, sub.query)
		if sub.ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warningf("Live query on %s failed: %v", sub.query.collection, err)
			continue
		}
		sub.fn(docs)
	}
}
