package clock

// eventHeap is a container/heap.Interface over *Event, ordered first by
// timestamp then by insertion sequence (spec §4.1: "a min-heap keyed
// first by timestamp_ms, then by a deterministic tie-breaker"). Breaking
// ties explicitly on seq rather than relying on container/heap's
// internal ordering is what makes FIFO-at-equal-timestamp a guarantee
// instead of an accident of heap shape (spec §9 Design Notes: "avoid
// unstable sorts... break ties with insertion sequence").
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].TimestampMs != h[j].TimestampMs {
		return h[i].TimestampMs < h[j].TimestampMs
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
