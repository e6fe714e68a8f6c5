package events

import (
	"strconv"
	"sync"
	"sync/atomic"

	"extrinsicScope/internal/model"
)

// DefaultChannelSize is the buffer size of a subscription channel when none
// is given.
const DefaultChannelSize = 16

// TransactionListChanged announces that new transactions were stored for an
// account on a chain.
type TransactionListChanged struct {
	ChainID     string
	AccountID   model.AccountID
	BlockNumber uint64
	Count       int
}

// Filter narrows a subscription. Empty fields match everything.
type Filter struct {
	ChainID   string
	AccountID model.AccountID
}

func (f Filter) Match(event TransactionListChanged) bool {
	if f.ChainID != "" && f.ChainID != event.ChainID {
		return false
	}
	if !f.AccountID.IsEmpty() && f.AccountID != event.AccountID {
		return false
	}
	return true
}

// SubscriptionID identifies a subscription.
type SubscriptionID string

type subscription struct {
	filter  Filter
	channel chan TransactionListChanged
}

// Bus delivers notifications to subscribers without blocking the publisher.
// Events for a full subscriber channel are dropped.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[SubscriptionID]*subscription
	nextID      atomic.Uint64

	stats struct {
		published atomic.Uint64
		delivered atomic.Uint64
		dropped   atomic.Uint64
	}
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[SubscriptionID]*subscription)}
}

// Subscribe registers a subscriber. The returned cancel function removes it
// and closes the channel.
func (b *Bus) Subscribe(filter Filter, channelSize int) (SubscriptionID, <-chan TransactionListChanged, func()) {
	if channelSize <= 0 {
		channelSize = DefaultChannelSize
	}

	id := SubscriptionID("sub-" + strconv.FormatUint(b.nextID.Add(1), 10))
	sub := &subscription{filter: filter, channel: make(chan TransactionListChanged, channelSize)}

	b.mu.Lock()
	b.subscribers[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(sub.channel)
		})
	}
	return id, sub.channel, cancel
}

// Notify broadcasts event to every matching subscriber.
func (b *Bus) Notify(event TransactionListChanged) {
	b.stats.published.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if !sub.filter.Match(event) {
			continue
		}
		select {
		case sub.channel <- event:
			b.stats.delivered.Add(1)
		default:
			b.stats.dropped.Add(1)
		}
	}
}

func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Stats returns the number of published, delivered and dropped events.
func (b *Bus) Stats() (published, delivered, dropped uint64) {
	return b.stats.published.Load(), b.stats.delivered.Load(), b.stats.dropped.Load()
}
