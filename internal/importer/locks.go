package importer

import "sync"

// SupplierLocks keeps at most one running import per supplier within this
// process. The orchestrator does not lock; callers do.
type SupplierLocks struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewSupplierLocks creates an empty lock set
func NewSupplierLocks() *SupplierLocks {
	return &SupplierLocks{held: make(map[string]struct{})}
}

// TryLock acquires the supplier's lock without blocking. On success the
// returned function releases it; calling it more than once is safe.
func (l *SupplierLocks) TryLock(supplierID string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[supplierID]; busy {
		return nil, false
	}
	l.held[supplierID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, supplierID)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether the supplier currently has an import running
func (l *SupplierLocks) Held(supplierID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, busy := l.held[supplierID]
	return busy
}
