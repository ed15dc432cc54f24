package walker

// DefaultPrefetchLimit caps how many prefetched handles may be queued at once.
const DefaultPrefetchLimit = 256

// Budget bounds the number of prefetched handles waiting in the pipeline so
// that prefetching never exhausts file descriptors. Acquiring never blocks:
// when the budget is spent, files are simply forwarded without a handle.
type Budget struct {
	slots chan struct{}
}

// NewBudget creates a budget of limit handles. A limit below one uses
// DefaultPrefetchLimit.
func NewBudget(limit int) *Budget {
	if limit < 1 {
		limit = DefaultPrefetchLimit
	}
	return &Budget{slots: make(chan struct{}, limit)}
}

// TryAcquire takes a slot if one is free.
func (b *Budget) TryAcquire() bool {
	select {
	case b.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release returns a slot.
func (b *Budget) Release() {
	select {
	case <-b.slots:
	default:
	}
}

// InUse returns the number of handles currently charged to the budget.
func (b *Budget) InUse() int {
	return len(b.slots)
}
