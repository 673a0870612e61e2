package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// InvestRequest represents the request to deposit into a pool
type InvestRequest struct {
	PoolID   string `json:"pool_id"`
	Investor string `json:"investor"`
	Amount   string `json:"amount"`
	Title    string `json:"title,omitempty"`
}

// InvestResponse represents the response
type InvestResponse struct {
	Investment struct {
		InvestmentID   string `json:"investment_id"`
		ReceiptID      string `json:"receipt_id"`
		ExpectedReturn string `json:"expected_return"`
		MaturityTime   int64  `json:"maturity_time"`
	} `json:"investment"`
	Shares string `json:"shares"`
}

// LatencyRecord records latency for one deposit
type LatencyRecord struct {
	Latency   time.Duration
	Timestamp time.Time
}

// BenchmarkResults holds all test results
type BenchmarkResults struct {
	Deposits  int64
	Success   int64
	Failed    int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (r *BenchmarkResults) Add(latency time.Duration, success bool) {
	atomic.AddInt64(&r.Deposits, 1)
	if success {
		atomic.AddInt64(&r.Success, 1)
	} else {
		atomic.AddInt64(&r.Failed, 1)
	}
	r.mu.Lock()
	r.Latencies = append(r.Latencies, latency)
	r.mu.Unlock()
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avg(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	return total / time.Duration(len(latencies))
}

func minLatency(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l < m {
			m = l
		}
	}
	return m
}

func maxLatency(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l > m {
			m = l
		}
	}
	return m
}

func invest(client *http.Client, baseURL string, req *InvestRequest) (time.Duration, bool) {
	body, _ := json.Marshal(req)
	start := time.Now()

	httpReq, err := http.NewRequest("POST", baseURL+"/v1/invest", bytes.NewReader(body))
	if err != nil {
		return time.Since(start), false
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	latency := time.Since(start)

	if err != nil {
		return latency, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return latency, false
	}

	var investResp InvestResponse
	if err := json.NewDecoder(resp.Body).Decode(&investResp); err != nil {
		return latency, true
	}
	return latency, investResp.Investment.InvestmentID != ""
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	depositCount := flag.Int("n", 10000, "Number of deposits")
	concurrency := flag.Int("c", 100, "Concurrency level")
	poolID := flag.String("pool", "pool-1", "Pool ID")
	amount := flag.String("amount", "100000", "Deposit amount (settlement asset base units)")
	outputFile := flag.String("o", "", "Output JSON report file")
	flag.Parse()

	fmt.Println("=== EdenVest Deposit Benchmark ===")
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Pool:        %s\n", *poolID)
	fmt.Printf("Deposits:    %d\n", *depositCount)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Println("==================================")

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *concurrency * 2,
			MaxIdleConnsPerHost: *concurrency * 2,
		},
	}

	results := &BenchmarkResults{}
	jobs := make(chan int, *depositCount)
	for i := 0; i < *depositCount; i++ {
		jobs <- i
	}
	close(jobs)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				req := &InvestRequest{
					PoolID:   *poolID,
					Investor: fmt.Sprintf("eden1bench%04d", i%1000),
					Amount:   *amount,
					Title:    fmt.Sprintf("bench-%d", i),
				}
				latency, ok := invest(client, *baseURL, req)
				results.Add(latency, ok)
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	results.mu.Lock()
	latencies := results.Latencies
	results.mu.Unlock()

	tps := float64(results.Success) / elapsed.Seconds()

	fmt.Println()
	fmt.Println("=== Results ===")
	fmt.Printf("Elapsed:     %v\n", elapsed)
	fmt.Printf("Deposits:    %d (success %d, failed %d)\n", results.Deposits, results.Success, results.Failed)
	fmt.Printf("Throughput:  %.1f deposits/s\n", tps)
	fmt.Printf("Latency avg: %v\n", avg(latencies))
	fmt.Printf("Latency min: %v\n", minLatency(latencies))
	fmt.Printf("Latency p50: %v\n", percentile(latencies, 0.50))
	fmt.Printf("Latency p95: %v\n", percentile(latencies, 0.95))
	fmt.Printf("Latency p99: %v\n", percentile(latencies, 0.99))
	fmt.Printf("Latency max: %v\n", maxLatency(latencies))

	if *outputFile != "" {
		report := map[string]interface{}{
			"timestamp":   time.Now().Format(time.RFC3339),
			"target":      *baseURL,
			"pool_id":     *poolID,
			"deposits":    results.Deposits,
			"success":     results.Success,
			"failed":      results.Failed,
			"elapsed_ms":  elapsed.Milliseconds(),
			"tps":         tps,
			"avg_ms":      avg(latencies).Milliseconds(),
			"p50_ms":      percentile(latencies, 0.50).Milliseconds(),
			"p95_ms":      percentile(latencies, 0.95).Milliseconds(),
			"p99_ms":      percentile(latencies, 0.99).Milliseconds(),
			"max_ms":      maxLatency(latencies).Milliseconds(),
			"concurrency": *concurrency,
		}
		data, _ := json.MarshalIndent(report, "", "  ")
		if err := os.WriteFile(*outputFile, data, 0o644); err != nil {
			fmt.Printf("Failed to write report: %v\n", err)
		} else {
			fmt.Printf("Report written to %s\n", *outputFile)
		}
	}
}
