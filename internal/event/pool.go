package event

import "sync"

// Bids are the highest-volume event: every bidding household emits one per tick.
var bidPool = sync.Pool{
	New: func() any { return new(BidSubmittedEvent) },
}

// AcquireBidSubmittedEvent returns a zeroed event from the pool.
func AcquireBidSubmittedEvent() *BidSubmittedEvent {
	return bidPool.Get().(*BidSubmittedEvent)
}

// ReleaseBidSubmittedEvent resets ev and returns it to the pool.
// The caller must not touch ev afterwards.
func ReleaseBidSubmittedEvent(ev *BidSubmittedEvent) {
	*ev = BidSubmittedEvent{}
	bidPool.Put(ev)
}

// Warmup pre-allocates n pooled events.
func Warmup(n int) {
	evs := make([]*BidSubmittedEvent, n)
	for i := range evs {
		evs[i] = AcquireBidSubmittedEvent()
	}
	for _, ev := range evs {
		ReleaseBidSubmittedEvent(ev)
	}
}
