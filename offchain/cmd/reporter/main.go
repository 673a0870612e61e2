package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cosmossdk.io/math"
	"github.com/eden-finance/vest-sub001/offchain/reporter"
	"github.com/eden-finance/vest-sub001/x/vest/types"
)

// Config holds the application configuration
type Config struct {
	Pools         []string      `json:"pools"`
	PollInterval  time.Duration `json:"poll_interval"`
	BatchSize     int           `json:"batch_size"`
	BatchInterval time.Duration `json:"batch_interval"`
	ChainRPCURL   string        `json:"chain_rpc_url"`
	GRPCURL       string        `json:"grpc_url"`
	ReporterAddr  string        `json:"reporter_addr"`
	SubmitterType string        `json:"submitter_type"` // "mock" or "batch"
	ReturnRateBps int64         `json:"return_rate_bps"` // 0 = report projected returns
	Demo          bool          `json:"demo"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  10 * time.Second,
		BatchSize:     100,
		BatchInterval: 5 * time.Second,
		ChainRPCURL:   "http://localhost:26657",
		GRPCURL:       "localhost:9090",
		SubmitterType: "mock",
		Demo:          false,
	}
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// emptySource is used when no chain connection is configured (demo mode)
type emptySource struct{}

func (emptySource) ListOpenInvestments(ctx context.Context, poolID string) ([]*types.Investment, error) {
	return nil, nil
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file")
	pools := flag.String("pools", "", "Comma-separated pool IDs to cover")
	batchSize := flag.Int("batch-size", 0, "Maximum returns per batch")
	batchInterval := flag.Duration("batch-interval", 0, "Time interval for batch submission")
	pollInterval := flag.Duration("poll-interval", 0, "How often to refresh open investments")
	rpcURL := flag.String("rpc", "", "Chain RPC URL")
	grpcURL := flag.String("grpc", "", "Chain gRPC URL")
	reporterAddr := flag.String("reporter", "", "Reporter account address")
	submitterType := flag.String("submitter", "", "Submitter type (mock or batch)")
	rateBps := flag.Int64("rate-bps", 0, "Fixed annualized return rate in bps (0 = report projected returns)")
	demo := flag.Bool("demo", false, "Run demo mode with sample investments")
	flag.Parse()

	// Load configuration
	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Override with command line flags
	if *pools != "" {
		config.Pools = strings.Split(*pools, ",")
	}
	if *batchSize > 0 {
		config.BatchSize = *batchSize
	}
	if *batchInterval > 0 {
		config.BatchInterval = *batchInterval
	}
	if *pollInterval > 0 {
		config.PollInterval = *pollInterval
	}
	if *rpcURL != "" {
		config.ChainRPCURL = *rpcURL
	}
	if *grpcURL != "" {
		config.GRPCURL = *grpcURL
	}
	if *reporterAddr != "" {
		config.ReporterAddr = *reporterAddr
	}
	if *submitterType != "" {
		config.SubmitterType = *submitterType
	}
	if *rateBps > 0 {
		config.ReturnRateBps = *rateBps
	}
	if *demo {
		config.Demo = true
	}

	// Print configuration
	log.Println("=== EdenVest Returns Reporter ===")
	log.Printf("Pools: %v", config.Pools)
	log.Printf("Poll Interval: %v", config.PollInterval)
	log.Printf("Batch Size: %d", config.BatchSize)
	log.Printf("Batch Interval: %v", config.BatchInterval)
	log.Printf("Chain RPC: %s", config.ChainRPCURL)
	log.Printf("Submitter: %s", config.SubmitterType)
	log.Println("=================================")

	// Create submitter
	factory := reporter.NewSubmitterFactory()
	submitter := factory.Create(config.SubmitterType, &reporter.BatchSubmitterConfig{
		RPCURL:        config.ChainRPCURL,
		ReporterAddr:  config.ReporterAddr,
		BatchSize:     config.BatchSize,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	})

	// Create return source
	var returns reporter.ReturnSource
	if config.ReturnRateBps > 0 {
		returns = reporter.FixedRateSource{RateBps: config.ReturnRateBps}
	} else {
		returns = reporter.ProjectedReturnSource{}
	}

	// Create reporter
	reporterConfig := &reporter.Config{
		Pools:         config.Pools,
		PollInterval:  config.PollInterval,
		BatchSize:     config.BatchSize,
		BatchInterval: config.BatchInterval,
		ChainRPCURL:   config.ChainRPCURL,
		GRPCURL:       config.GRPCURL,
	}
	r := reporter.NewReporter(reporterConfig, emptySource{}, returns, submitter)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the reporter
	if err := r.Start(ctx); err != nil {
		log.Fatalf("Failed to start reporter: %v", err)
	}

	// Run demo if requested
	if config.Demo {
		go runDemo(ctx, r)
	}

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Periodic stats logging
	statsTicker := time.NewTicker(10 * time.Second)
	defer statsTicker.Stop()

	log.Println("Reporter is running. Press Ctrl+C to stop.")

	for {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
			if err := r.Stop(); err != nil {
				log.Printf("Error stopping reporter: %v", err)
			}
			log.Println("Reporter stopped")
			return
		case <-statsTicker.C:
			stats := r.GetStats()
			log.Printf("Stats: Queued=%d, Buffered=%d, Cached=%d, Submitted=%d, Failed=%d",
				stats.QueueDepth, stats.BufferedCount, stats.CacheSize, stats.Submitted, stats.FailedBatches)
		}
	}
}

// runDemo tracks a handful of sample investments, some already matured, so
// the drain and submission loops have something to chew on.
func runDemo(ctx context.Context, r *reporter.Reporter) {
	log.Println("Starting demo mode...")
	time.Sleep(time.Second)

	now := time.Now().Unix()
	day := int64(86400)

	samples := []*types.Investment{
		{
			InvestmentID:   "inv-demo-1",
			PoolID:         "pool-demo",
			Investor:       "eden1demo1",
			Amount:         math.NewInt(10_000),
			DepositTime:    now - 30*day,
			MaturityTime:   now - 60, // already matured
			ExpectedReturn: math.NewInt(123),
		},
		{
			InvestmentID:   "inv-demo-2",
			PoolID:         "pool-demo",
			Investor:       "eden1demo2",
			Amount:         math.NewInt(50_000),
			DepositTime:    now - 90*day,
			MaturityTime:   now - 10, // already matured
			ExpectedReturn: math.NewInt(1_849),
		},
		{
			InvestmentID:   "inv-demo-3",
			PoolID:         "pool-demo",
			Investor:       "eden1demo3",
			Amount:         math.NewInt(25_000),
			DepositTime:    now,
			MaturityTime:   now + 5, // matures during the demo
			ExpectedReturn: math.NewInt(500),
		},
	}

	for _, investment := range samples {
		log.Printf("Tracking demo investment %s (matures at %d)", investment.InvestmentID, investment.MaturityTime)
		r.Track(investment)
	}

	// Let the matured entries drain and submit
	r.ProcessMatured(ctx, time.Now().Unix())
	time.Sleep(6 * time.Second)
	r.ProcessMatured(ctx, time.Now().Unix())

	stats := r.GetStats()
	log.Printf("Demo complete: submitted batches=%d, queue depth=%d", stats.Submitted, stats.QueueDepth)
}
