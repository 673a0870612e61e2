package reporter

import (
	"sync"

	"github.com/huandu/skiplist"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// maturityKey orders queue entries by maturity time, then investment ID so
// two investments maturing in the same second keep a stable order.
type maturityKey struct {
	maturityTime int64
	investmentID string
}

// maturityKeyAsc is a comparator for ascending maturity order
type maturityKeyAsc struct{}

func (k maturityKeyAsc) Compare(lhs, rhs interface{}) int {
	l := lhs.(maturityKey)
	r := rhs.(maturityKey)
	if l.maturityTime != r.maturityTime {
		if l.maturityTime < r.maturityTime {
			return -1
		}
		return 1
	}
	if l.investmentID < r.investmentID {
		return -1
	}
	if l.investmentID > r.investmentID {
		return 1
	}
	return 0
}

func (k maturityKeyAsc) CalcScore(key interface{}) float64 {
	return float64(key.(maturityKey).maturityTime)
}

// PendingQueue holds investments awaiting maturity, ordered by maturity time.
// Provides O(log n) insertion and deletion.
type PendingQueue struct {
	list *skiplist.SkipList
	byID map[string]maturityKey
	mu   sync.RWMutex
}

// NewPendingQueue creates a new pending queue
func NewPendingQueue() *PendingQueue {
	return &PendingQueue{
		list: skiplist.New(maturityKeyAsc{}),
		byID: make(map[string]maturityKey),
	}
}

// Add inserts an investment, replacing any previous entry for the same ID
func (q *PendingQueue) Add(investment *types.Investment) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if prev, exists := q.byID[investment.InvestmentID]; exists {
		q.list.Remove(prev)
	}

	key := maturityKey{maturityTime: investment.MaturityTime, investmentID: investment.InvestmentID}
	q.list.Set(key, investment)
	q.byID[investment.InvestmentID] = key
}

// Remove drops an investment from the queue by ID
func (q *PendingQueue) Remove(investmentID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key, exists := q.byID[investmentID]
	if !exists {
		return
	}
	q.list.Remove(key)
	delete(q.byID, investmentID)
}

// Contains reports whether an investment is queued
func (q *PendingQueue) Contains(investmentID string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, exists := q.byID[investmentID]
	return exists
}

// PopMatured removes and returns every investment with maturityTime <= cutoff,
// in maturity order.
func (q *PendingQueue) PopMatured(cutoff int64) []*types.Investment {
	q.mu.Lock()
	defer q.mu.Unlock()

	var matured []*types.Investment
	for {
		front := q.list.Front()
		if front == nil {
			break
		}
		key := front.Key().(maturityKey)
		if key.maturityTime > cutoff {
			break
		}
		matured = append(matured, front.Value.(*types.Investment))
		q.list.Remove(key)
		delete(q.byID, key.investmentID)
	}
	return matured
}

// PeekNext returns the earliest-maturing investment without removing it
func (q *PendingQueue) PeekNext() *types.Investment {
	q.mu.RLock()
	defer q.mu.RUnlock()

	front := q.list.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*types.Investment)
}

// Len returns the number of queued investments
func (q *PendingQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.list.Len()
}

// Clear removes all entries
func (q *PendingQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list = skiplist.New(maturityKeyAsc{})
	q.byID = make(map[string]maturityKey)
}

// ReportBuffer is a thread-safe buffer for return entries pending submission
type ReportBuffer struct {
	entries []*ReturnEntry
	maxSize int
	mu      sync.Mutex
}

// NewReportBuffer creates a new report buffer with the given max batch size
func NewReportBuffer(maxSize int) *ReportBuffer {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &ReportBuffer{
		entries: make([]*ReturnEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add adds a return entry to the buffer
func (b *ReportBuffer) Add(entry *ReturnEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entry)
}

// AddBatch adds multiple return entries to the buffer
func (b *ReportBuffer) AddBatch(entries []*ReturnEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entries...)
}

// Flush returns all entries and clears the buffer
func (b *ReportBuffer) Flush() []*ReturnEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.entries
	b.entries = make([]*ReturnEntry, 0, b.maxSize)
	return entries
}

// Len returns the number of buffered entries
func (b *ReportBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// IsFull returns true if the buffer is at or above the batch size
func (b *ReportBuffer) IsFull() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries) >= b.maxSize
}

// Clear removes all entries from the buffer
func (b *ReportBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make([]*ReturnEntry, 0, b.maxSize)
}

// InvestmentCache is a thread-safe cache of investments seen by the reporter,
// used to avoid re-enqueueing investments already processed.
type InvestmentCache struct {
	investments map[string]*types.Investment
	reported    map[string]bool
	mu          sync.RWMutex
}

// NewInvestmentCache creates a new investment cache
func NewInvestmentCache() *InvestmentCache {
	return &InvestmentCache{
		investments: make(map[string]*types.Investment),
		reported:    make(map[string]bool),
	}
}

// Get retrieves an investment from the cache
func (c *InvestmentCache) Get(investmentID string) (*types.Investment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	investment, exists := c.investments[investmentID]
	return investment, exists
}

// Set stores an investment in the cache
func (c *InvestmentCache) Set(investment *types.Investment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.investments[investment.InvestmentID] = investment
}

// MarkReported flags an investment as already submitted
func (c *InvestmentCache) MarkReported(investmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reported[investmentID] = true
}

// IsReported reports whether an investment was already submitted
func (c *InvestmentCache) IsReported(investmentID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reported[investmentID]
}

// Delete removes an investment from the cache
func (c *InvestmentCache) Delete(investmentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.investments, investmentID)
	delete(c.reported, investmentID)
}

// Len returns the number of cached investments
func (c *InvestmentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.investments)
}

// Clear removes all cached state
func (c *InvestmentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.investments = make(map[string]*types.Investment)
	c.reported = make(map[string]bool)
}
