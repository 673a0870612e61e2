package reporter

import (
	"context"
	"log"
	"sync"
	"time"

	"cosmossdk.io/math"

	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// Config holds the reporter configuration
type Config struct {
	Pools         []string      // Pool IDs this reporter covers
	PollInterval  time.Duration // How often to refresh open investments
	BatchSize     int           // Maximum entries per batch submission
	BatchInterval time.Duration // Time interval for batch submission
	ChainRPCURL   string        // Chain RPC URL for submission
	GRPCURL       string        // Chain gRPC URL for queries
}

// DefaultConfig returns the default reporter configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  10 * time.Second,
		BatchSize:     100,
		BatchInterval: 5 * time.Second,
		ChainRPCURL:   "http://localhost:26657",
		GRPCURL:       "localhost:9090",
	}
}

// InvestmentSource supplies the open investments of a pool. Backed by the
// chain's query endpoints in production, by fixtures in tests.
type InvestmentSource interface {
	ListOpenInvestments(ctx context.Context, poolID string) ([]*types.Investment, error)
}

// ReturnSource computes the realized return for a matured investment
type ReturnSource interface {
	ComputeReturn(investment *types.Investment) math.Int
}

// ProjectedReturnSource reports the return projected at deposit time. The
// simplest correct source when the pool's strategy tracks its target rate.
type ProjectedReturnSource struct{}

// ComputeReturn returns the investment's expected return
func (ProjectedReturnSource) ComputeReturn(investment *types.Investment) math.Int {
	return investment.ExpectedReturn
}

// FixedRateSource computes returns at a fixed annualized rate over the
// investment's actual lock window, truncating toward zero like the chain.
type FixedRateSource struct {
	RateBps int64
}

// ComputeReturn applies the fixed rate pro rata to the lock window
func (s FixedRateSource) ComputeReturn(investment *types.Investment) math.Int {
	lockSeconds := investment.MaturityTime - investment.DepositTime
	if lockSeconds <= 0 || s.RateBps <= 0 {
		return math.ZeroInt()
	}
	numerator := investment.Amount.
		Mul(math.NewInt(s.RateBps)).
		Mul(math.NewInt(lockSeconds))
	denominator := math.NewInt(types.BpsDenominator).Mul(math.NewInt(types.SecondsPerYear))
	return numerator.Quo(denominator)
}

// Reporter watches pools for investments reaching maturity and submits their
// realized returns to the chain in batches.
type Reporter struct {
	config    *Config
	source    InvestmentSource
	returns   ReturnSource
	submitter TxSubmitter

	queue  *PendingQueue
	buffer *ReportBuffer
	cache  *InvestmentCache

	// Control channels
	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReporter creates a new reporter instance
func NewReporter(config *Config, source InvestmentSource, returnSource ReturnSource, submitter TxSubmitter) *Reporter {
	if config == nil {
		config = DefaultConfig()
	}
	if returnSource == nil {
		returnSource = ProjectedReturnSource{}
	}
	if submitter == nil {
		submitter = NewMockSubmitter()
	}

	return &Reporter{
		config:    config,
		source:    source,
		returns:   returnSource,
		submitter: submitter,
		queue:     NewPendingQueue(),
		buffer:    NewReportBuffer(config.BatchSize),
		cache:     NewInvestmentCache(),
		stopCh:    make(chan struct{}),
	}
}

// Start starts the reporter loops
func (r *Reporter) Start(ctx context.Context) error {
	log.Println("Starting returns reporter...")

	// Start investment polling
	r.wg.Add(1)
	go r.pollLoop(ctx)

	// Start maturity drain and batch submission
	r.wg.Add(1)
	go r.batchLoop(ctx)

	log.Println("Returns reporter started")
	return nil
}

// Stop stops the reporter
func (r *Reporter) Stop() error {
	log.Println("Stopping returns reporter...")
	close(r.stopCh)
	r.wg.Wait()
	log.Println("Returns reporter stopped")
	return nil
}

// pollLoop refreshes the pending queue from the chain
func (r *Reporter) pollLoop(ctx context.Context) {
	defer r.wg.Done()

	// Prime the queue before the first tick
	r.refreshInvestments(ctx)

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refreshInvestments(ctx)
		}
	}
}

// batchLoop drains matured investments and submits return batches
func (r *Reporter) batchLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.BatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Flush whatever is ready before stopping
			r.drainMatured(time.Now().Unix())
			r.submitPending(ctx)
			return
		case <-r.stopCh:
			r.drainMatured(time.Now().Unix())
			r.submitPending(ctx)
			return
		case <-ticker.C:
			r.drainMatured(time.Now().Unix())
			r.submitPending(ctx)
		}
	}
}

// refreshInvestments pulls open investments for every covered pool and
// enqueues the ones not yet tracked
func (r *Reporter) refreshInvestments(ctx context.Context) {
	for _, poolID := range r.config.Pools {
		investments, err := r.source.ListOpenInvestments(ctx, poolID)
		if err != nil {
			log.Printf("Error listing investments for pool %s: %v", poolID, err)
			continue
		}

		added := 0
		for _, investment := range investments {
			if investment.IsWithdrawn || investment.IsMatured {
				// Already terminal on chain; nothing to report
				r.queue.Remove(investment.InvestmentID)
				r.cache.Delete(investment.InvestmentID)
				continue
			}
			if r.cache.IsReported(investment.InvestmentID) {
				continue
			}
			if _, seen := r.cache.Get(investment.InvestmentID); !seen {
				added++
			}
			r.cache.Set(investment)
			r.queue.Add(investment)
		}
		if added > 0 {
			log.Printf("Tracking %d new investments in pool %s (queue depth %d)", added, poolID, r.queue.Len())
		}
	}
}

// drainMatured moves investments whose maturity has passed from the queue
// into the report buffer with their computed returns
func (r *Reporter) drainMatured(now int64) {
	matured := r.queue.PopMatured(now)
	for _, investment := range matured {
		entry := &ReturnEntry{
			PoolID:       investment.PoolID,
			InvestmentID: investment.InvestmentID,
			ActualReturn: r.returns.ComputeReturn(investment),
			MaturityTime: investment.MaturityTime,
		}
		r.buffer.Add(entry)
		r.cache.MarkReported(investment.InvestmentID)
	}
	if len(matured) > 0 {
		log.Printf("Drained %d matured investments into report buffer", len(matured))
	}
}

// submitPending submits buffered entries grouped per pool. Failed batches go
// back into the buffer for the next tick.
func (r *Reporter) submitPending(ctx context.Context) {
	entries := r.buffer.Flush()
	if len(entries) == 0 {
		return
	}

	byPool := make(map[string][]*ReturnEntry)
	for _, entry := range entries {
		byPool[entry.PoolID] = append(byPool[entry.PoolID], entry)
	}

	for poolID, batch := range byPool {
		log.Printf("Submitting %d returns for pool %s...", len(batch), poolID)
		if err := r.submitter.SubmitReturns(ctx, poolID, batch); err != nil {
			log.Printf("Error submitting returns for pool %s: %v", poolID, err)
			// Re-buffer for retry on the next tick
			r.buffer.AddBatch(batch)
		}
	}
}

// Stats returns reporter statistics
type Stats struct {
	QueueDepth     int
	BufferedCount  int
	CacheSize      int
	Submitted      int64
	FailedBatches  int64
	LastSubmitTime time.Time
}

// GetStats returns current reporter statistics
func (r *Reporter) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := r.submitter.GetStatus()
	return Stats{
		QueueDepth:     r.queue.Len(),
		BufferedCount:  r.buffer.Len(),
		CacheSize:      r.cache.Len(),
		Submitted:      status.TotalSubmissions,
		FailedBatches:  status.FailedSubmissions,
		LastSubmitTime: status.LastSubmitTime,
	}
}

// Track adds an investment directly to the reporter (used by tests and by
// event-driven feeds instead of polling)
func (r *Reporter) Track(investment *types.Investment) {
	if investment.IsWithdrawn || investment.IsMatured {
		return
	}
	if r.cache.IsReported(investment.InvestmentID) {
		return
	}
	r.cache.Set(investment)
	r.queue.Add(investment)
}

// ProcessMatured runs one drain-and-submit cycle immediately
func (r *Reporter) ProcessMatured(ctx context.Context, now int64) {
	r.drainMatured(now)
	r.submitPending(ctx)
}
