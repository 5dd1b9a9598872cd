package market

import (
	"container/heap"
	"sort"

	"housing_go/internal/domain"
	"housing_go/pkg/quant"
)

// bidHeap is a max-heap on price; equal prices are served in submission order.
type bidHeap []domain.BidRecord

func (h bidHeap) Len() int { return len(h) }
func (h bidHeap) Less(i, j int) bool {
	if h[i].Price != h[j].Price {
		return h[i].Price > h[j].Price
	}
	return h[i].Seq < h[j].Seq
}
func (h bidHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *bidHeap) Push(x any)   { *h = append(*h, x.(domain.BidRecord)) }
func (h *bidHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// BidQueue holds the bids of the current tick. It is drained by every clearing.
type BidQueue struct {
	h       bidHeap
	nextSeq uint64
}

func newBidQueue() *BidQueue {
	return &BidQueue{}
}

func (q *BidQueue) push(buyer domain.HouseholdID, price quant.Price) {
	q.nextSeq++
	heap.Push(&q.h, domain.BidRecord{Buyer: buyer, Price: price, Seq: q.nextSeq})
}

// pop removes and returns the highest bid.
func (q *BidQueue) pop() (domain.BidRecord, bool) {
	if len(q.h) == 0 {
		return domain.BidRecord{}, false
	}
	return heap.Pop(&q.h).(domain.BidRecord), true
}

// Len returns the number of pending bids.
func (q *BidQueue) Len() int {
	return len(q.h)
}

// records returns the pending bids in submission order.
func (q *BidQueue) records() []domain.BidRecord {
	out := make([]domain.BidRecord, len(q.h))
	copy(out, q.h)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

func (q *BidQueue) restore(bids []domain.BidRecord) {
	q.h = q.h[:0]
	for _, b := range bids {
		q.h = append(q.h, b)
		if b.Seq > q.nextSeq {
			q.nextSeq = b.Seq
		}
	}
	heap.Init(&q.h)
}
