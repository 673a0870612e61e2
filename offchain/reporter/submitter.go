package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"cosmossdk.io/math"
)

// ReturnEntry is one computed return awaiting submission
type ReturnEntry struct {
	PoolID       string
	InvestmentID string
	ActualReturn math.Int
	MaturityTime int64
}

// TxSubmitter defines the interface for submitting return reports to the chain
type TxSubmitter interface {
	// SubmitReturns submits a batch of return entries for one pool
	SubmitReturns(ctx context.Context, poolID string, entries []*ReturnEntry) error

	// GetStatus returns the submitter status
	GetStatus() SubmitterStatus
}

// SubmitterStatus represents the status of a submitter
type SubmitterStatus struct {
	Connected         bool
	PendingTxCount    int
	LastSubmitTime    time.Time
	LastError         string
	TotalSubmissions  int64
	FailedSubmissions int64
}

// MockSubmitter is a mock implementation for testing
type MockSubmitter struct {
	mu              sync.Mutex
	entries         []*ReturnEntry
	status          SubmitterStatus
	simulateFailure bool
	failuresLeft    int
}

// NewMockSubmitter creates a new mock submitter
func NewMockSubmitter() *MockSubmitter {
	return &MockSubmitter{
		entries: make([]*ReturnEntry, 0),
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitReturns records the batch (mock implementation)
func (s *MockSubmitter) SubmitReturns(ctx context.Context, poolID string, entries []*ReturnEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateFailure || s.failuresLeft > 0 {
		if s.failuresLeft > 0 {
			s.failuresLeft--
		}
		s.status.FailedSubmissions++
		s.status.LastError = "simulated failure"
		return fmt.Errorf("simulated failure")
	}

	s.entries = append(s.entries, entries...)
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()

	log.Printf("[MockSubmitter] Submitted %d returns for pool %s", len(entries), poolID)

	return nil
}

// GetStatus returns the mock submitter status
func (s *MockSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GetSubmittedReturns returns all submitted entries (for testing)
func (s *MockSubmitter) GetSubmittedReturns() []*ReturnEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*ReturnEntry, len(s.entries))
	copy(result, s.entries)
	return result
}

// SetSimulateFailure enables or disables failure simulation
func (s *MockSubmitter) SetSimulateFailure(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateFailure = fail
}

// FailNext makes the next n submissions fail, then recover
func (s *MockSubmitter) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failuresLeft = n
}

// Clear clears all submitted data (for testing)
func (s *MockSubmitter) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]*ReturnEntry, 0)
}

// BatchSubmitter submits return reports in batches to the chain
type BatchSubmitter struct {
	rpcURL        string
	reporterAddr  string
	batchSize     int
	retryAttempts int
	retryDelay    time.Duration

	mu     sync.Mutex
	status SubmitterStatus
}

// BatchSubmitterConfig holds configuration for BatchSubmitter
type BatchSubmitterConfig struct {
	RPCURL        string
	ReporterAddr  string
	BatchSize     int
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultBatchSubmitterConfig returns default configuration
func DefaultBatchSubmitterConfig() *BatchSubmitterConfig {
	return &BatchSubmitterConfig{
		RPCURL:        "http://localhost:26657",
		BatchSize:     100,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// NewBatchSubmitter creates a new batch submitter
func NewBatchSubmitter(config *BatchSubmitterConfig) *BatchSubmitter {
	if config == nil {
		config = DefaultBatchSubmitterConfig()
	}

	return &BatchSubmitter{
		rpcURL:        config.RPCURL,
		reporterAddr:  config.ReporterAddr,
		batchSize:     config.BatchSize,
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		status: SubmitterStatus{
			Connected: true,
		},
	}
}

// SubmitReturns submits return entries in batches
func (s *BatchSubmitter) SubmitReturns(ctx context.Context, poolID string, entries []*ReturnEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	s.status.PendingTxCount = len(entries)
	s.mu.Unlock()

	// Split into batches
	for i := 0; i < len(entries); i += s.batchSize {
		end := i + s.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]

		if err := s.submitBatchWithRetry(ctx, poolID, batch); err != nil {
			s.mu.Lock()
			s.status.FailedSubmissions++
			s.status.LastError = err.Error()
			s.mu.Unlock()
			return fmt.Errorf("failed to submit batch: %w", err)
		}
	}

	s.mu.Lock()
	s.status.TotalSubmissions++
	s.status.LastSubmitTime = time.Now()
	s.status.PendingTxCount = 0
	s.mu.Unlock()

	return nil
}

// submitBatchWithRetry submits a batch with retry logic
func (s *BatchSubmitter) submitBatchWithRetry(ctx context.Context, poolID string, batch []*ReturnEntry) error {
	var lastErr error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		if err := s.submitBatch(ctx, poolID, batch); err != nil {
			lastErr = err
			log.Printf("Batch submission attempt %d failed: %v", attempt+1, err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// submitBatch submits a single batch
func (s *BatchSubmitter) submitBatch(ctx context.Context, poolID string, batch []*ReturnEntry) error {
	// Prepare the transaction message
	msg := struct {
		Jsonrpc string        `json:"jsonrpc"`
		ID      int           `json:"id"`
		Method  string        `json:"method"`
		Params  []interface{} `json:"params"`
	}{
		Jsonrpc: "2.0",
		ID:      1,
		Method:  "broadcast_tx_async",
		Params:  []interface{}{s.encodeReturns(poolID, batch)},
	}

	// Log the submission (in production, this would be an actual RPC call)
	msgBytes, _ := json.Marshal(msg)
	log.Printf("[BatchSubmitter] Submitting batch of %d returns for pool %s to %s", len(batch), poolID, s.rpcURL)
	log.Printf("[BatchSubmitter] Message: %s", string(msgBytes))

	// In a real implementation, we would:
	// 1. Create a MsgSetActualReturns transaction
	// 2. Sign it with the reporter key
	// 3. Broadcast via RPC

	return nil
}

// encodeReturns encodes a batch for submission
func (s *BatchSubmitter) encodeReturns(poolID string, batch []*ReturnEntry) string {
	// In production, this would properly encode the entries
	// into a Cosmos SDK transaction
	data := map[string]interface{}{
		"reporter":       s.reporterAddr,
		"pool_id":        poolID,
		"investment_ids": make([]string, 0, len(batch)),
		"actual_returns": make([]string, 0, len(batch)),
	}
	ids := data["investment_ids"].([]string)
	returns := data["actual_returns"].([]string)
	for _, entry := range batch {
		ids = append(ids, entry.InvestmentID)
		returns = append(returns, entry.ActualReturn.String())
	}
	data["investment_ids"] = ids
	data["actual_returns"] = returns

	encoded, _ := json.Marshal(data)
	return string(encoded)
}

// GetStatus returns the submitter status
func (s *BatchSubmitter) GetStatus() SubmitterStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetRPCURL updates the RPC URL
func (s *BatchSubmitter) SetRPCURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpcURL = url
}

// SubmitterFactory creates submitters based on configuration
type SubmitterFactory struct{}

// NewSubmitterFactory creates a new submitter factory
func NewSubmitterFactory() *SubmitterFactory {
	return &SubmitterFactory{}
}

// Create creates a new submitter based on the type
func (f *SubmitterFactory) Create(submitterType string, config *BatchSubmitterConfig) TxSubmitter {
	switch submitterType {
	case "mock":
		return NewMockSubmitter()
	case "batch":
		return NewBatchSubmitter(config)
	default:
		return NewMockSubmitter()
	}
}
