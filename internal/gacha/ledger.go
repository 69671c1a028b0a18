package gacha

// DefaultLedgerCapacity bounds the ledger when no capacity is configured.
const DefaultLedgerCapacity = 100

// PullLedger keeps the most recent pulls for reporting. It is a ring buffer;
// the oldest entry is evicted once capacity is reached. Nothing reads it back
// into resolution.
type PullLedger struct {
	buf  []PullResult
	next int
	size int
}

func NewPullLedger(capacity int) *PullLedger {
	if capacity < 1 {
		capacity = DefaultLedgerCapacity
	}
	return &PullLedger{buf: make([]PullResult, capacity)}
}

// Record prepends a result.
func (l *PullLedger) Record(r PullResult) {
	l.buf[l.next] = r
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

// Recent returns up to limit results, newest first. limit <= 0 means all.
func (l *PullLedger) Recent(limit int) []PullResult {
	n := l.size
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]PullResult, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, l.buf[(l.next-i+len(l.buf))%len(l.buf)])
	}
	return out
}

func (l *PullLedger) Len() int      { return l.size }
func (l *PullLedger) Capacity() int { return len(l.buf) }

// Restore replaces the contents with saved results (newest first), keeping at most Capacity.
func (l *PullLedger) Restore(saved []PullResult) {
	for i := range l.buf {
		l.buf[i] = PullResult{}
	}
	l.next, l.size = 0, 0
	if len(saved) > len(l.buf) {
		saved = saved[:len(l.buf)]
	}
	for i := len(saved) - 1; i >= 0; i-- {
		l.Record(saved[i])
	}
}
