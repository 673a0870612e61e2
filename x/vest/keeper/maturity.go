package keeper

import (
	"sync"

	"github.com/google/btree"
)

const btreeDegree = 32

// maturityItem wraps one queued investment for use in btree.
// Ordered by maturity time, then investment ID for determinism.
type maturityItem struct {
	maturityTime int64
	investmentID string
}

// Less implements btree.Item - ascending by maturity time
func (a *maturityItem) Less(b btree.Item) bool {
	other := b.(*maturityItem)
	if a.maturityTime != other.maturityTime {
		return a.maturityTime < other.maturityTime
	}
	return a.investmentID < other.investmentID
}

// maturityIndex is the in-memory view of the maturity queue, kept for cheap
// time-range scans without store iteration. The KVStore queue remains the
// source of truth; the index is rebuilt from it after a restart.
type maturityIndex struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

func newMaturityIndex() *maturityIndex {
	return &maturityIndex{tree: btree.New(btreeDegree)}
}

// Insert adds an entry to the index
func (idx *maturityIndex) Insert(maturityTime int64, investmentID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.ReplaceOrInsert(&maturityItem{maturityTime: maturityTime, investmentID: investmentID})
}

// Remove drops an entry from the index
func (idx *maturityIndex) Remove(maturityTime int64, investmentID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Delete(&maturityItem{maturityTime: maturityTime, investmentID: investmentID})
}

// Len returns the number of queued entries
func (idx *maturityIndex) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// DueBy returns the IDs of all entries with maturityTime <= cutoff, in
// maturity order
func (idx *maturityIndex) DueBy(cutoff int64) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var due []string
	idx.tree.AscendLessThan(&maturityItem{maturityTime: cutoff + 1}, func(item btree.Item) bool {
		due = append(due, item.(*maturityItem).investmentID)
		return true
	})
	return due
}

// NextMaturity returns the earliest queued maturity time, or 0 when empty
func (idx *maturityIndex) NextMaturity() int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	item := idx.tree.Min()
	if item == nil {
		return 0
	}
	return item.(*maturityItem).maturityTime
}
