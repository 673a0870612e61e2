package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EdenVest Metrics Collector
// Provides comprehensive metrics for monitoring

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all EdenVest metrics
type Collector struct {
	// Deposit metrics
	DepositsTotal  *prometheus.CounterVec
	DepositAmount  *prometheus.CounterVec
	DepositLatency *prometheus.HistogramVec

	// Withdrawal metrics
	WithdrawalsTotal  *prometheus.CounterVec
	WithdrawalAmount  *prometheus.CounterVec
	WithdrawalLatency *prometheus.HistogramVec

	// Share metrics
	SharesMinted *prometheus.CounterVec
	SharesBurned *prometheus.CounterVec
	ShareSupply  *prometheus.GaugeVec

	// Fee metrics
	FeeSharesCollected *prometheus.CounterVec
	FeesWithdrawn      *prometheus.CounterVec
	FeeBalance         *prometheus.GaugeVec

	// Swap metrics
	SwapsTotal          *prometheus.CounterVec
	SwapVolume          *prometheus.CounterVec
	SwapInconsistencies *prometheus.CounterVec
	SwapLatency         *prometheus.HistogramVec

	// Pool metrics
	PoolTVL           *prometheus.GaugeVec
	PoolDeposited     *prometheus.GaugeVec
	PoolWithdrawn     *prometheus.GaugeVec
	ActiveInvestments *prometheus.GaugeVec

	// Maturity metrics
	MaturitiesReached *prometheus.CounterVec
	ReturnsReported   *prometheus.CounterVec
	PendingMaturities *prometheus.GaugeVec

	// Reporter metrics
	ReporterBatchesSubmitted *prometheus.CounterVec
	ReporterBatchFailures    *prometheus.CounterVec
	ReporterQueueDepth       prometheus.Gauge

	// WebSocket metrics
	WSConnectionsActive *prometheus.GaugeVec
	WSMessagesTotal     *prometheus.CounterVec
	WSMessageLatency    *prometheus.HistogramVec
	WSSubscriptions     *prometheus.GaugeVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	APIErrorsTotal    *prometheus.CounterVec
	RateLimitHits     *prometheus.CounterVec

	// System metrics
	ActiveInvestors prometheus.Gauge
	BlockHeight     prometheus.Gauge
	BlockTime       *prometheus.HistogramVec
	TxPoolSize      prometheus.Gauge
	PeerCount       prometheus.Gauge
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	// Deposit metrics
	c.DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "deposits",
			Name:      "total",
			Help:      "Total number of deposits accepted",
		},
		[]string{"pool_id", "path"},
	)

	c.DepositAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "deposits",
			Name:      "amount",
			Help:      "Total deposited amount in the settlement asset",
		},
		[]string{"pool_id"},
	)

	c.DepositLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "deposits",
			Name:      "latency_ms",
			Help:      "Deposit processing latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"pool_id"},
	)

	// Withdrawal metrics
	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "withdrawals",
			Name:      "total",
			Help:      "Total number of withdrawals paid out",
		},
		[]string{"pool_id", "return_type"},
	)

	c.WithdrawalAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "withdrawals",
			Name:      "amount",
			Help:      "Total withdrawn amount in the settlement asset",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "withdrawals",
			Name:      "latency_ms",
			Help:      "Withdrawal processing latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"pool_id"},
	)

	// Share metrics
	c.SharesMinted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "shares",
			Name:      "minted",
			Help:      "Total shares minted",
		},
		[]string{"pool_id"},
	)

	c.SharesBurned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "shares",
			Name:      "burned",
			Help:      "Total shares burned",
		},
		[]string{"pool_id"},
	)

	c.ShareSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "shares",
			Name:      "supply",
			Help:      "Current share supply per pool",
		},
		[]string{"pool_id"},
	)

	// Fee metrics
	c.FeeSharesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "fees",
			Name:      "shares_collected",
			Help:      "Total fee shares routed to the fee sink",
		},
		[]string{"pool_id"},
	)

	c.FeesWithdrawn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "fees",
			Name:      "withdrawn",
			Help:      "Total fees drained to the protocol treasury",
		},
		[]string{"denom"},
	)

	c.FeeBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "fees",
			Name:      "balance",
			Help:      "Withdrawable fee balance per asset",
		},
		[]string{"denom"},
	)

	// Swap metrics
	c.SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "swaps",
			Name:      "total",
			Help:      "Total swap-and-invest operations",
		},
		[]string{"pool_id", "token_in", "status"},
	)

	c.SwapVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "swaps",
			Name:      "volume",
			Help:      "Total settlement-asset volume delivered by swaps",
		},
		[]string{"pool_id"},
	)

	c.SwapInconsistencies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "swaps",
			Name:      "inconsistencies_total",
			Help:      "Swaps rejected because delivered output did not match the reported output",
		},
		[]string{"pool_id", "token_in"},
	)

	c.SwapLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "swaps",
			Name:      "latency_ms",
			Help:      "Swap-and-invest latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"pool_id"},
	)

	// Pool metrics
	c.PoolTVL = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "pools",
			Name:      "tvl",
			Help:      "Pool custody balance in the settlement asset",
		},
		[]string{"pool_id"},
	)

	c.PoolDeposited = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "pools",
			Name:      "total_deposited",
			Help:      "Lifetime deposited amount per pool",
		},
		[]string{"pool_id"},
	)

	c.PoolWithdrawn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "pools",
			Name:      "total_withdrawn",
			Help:      "Lifetime withdrawn amount per pool",
		},
		[]string{"pool_id"},
	)

	c.ActiveInvestments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "pools",
			Name:      "active_investments",
			Help:      "Number of unwithdrawn investments per pool",
		},
		[]string{"pool_id", "status"},
	)

	// Maturity metrics
	c.MaturitiesReached = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "maturity",
			Name:      "reached_total",
			Help:      "Investments whose lock duration elapsed",
		},
		[]string{"pool_id"},
	)

	c.ReturnsReported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "maturity",
			Name:      "returns_reported_total",
			Help:      "Investments with an actual return applied",
		},
		[]string{"pool_id"},
	)

	c.PendingMaturities = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "maturity",
			Name:      "pending",
			Help:      "Matured investments awaiting a reported return",
		},
		[]string{"pool_id"},
	)

	// Reporter metrics
	c.ReporterBatchesSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "reporter",
			Name:      "batches_submitted",
			Help:      "Return batches submitted to the chain",
		},
		[]string{"pool_id"},
	)

	c.ReporterBatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "reporter",
			Name:      "batch_failures",
			Help:      "Return batches that exhausted all retries",
		},
		[]string{"pool_id"},
	)

	c.ReporterQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "reporter",
			Name:      "queue_depth",
			Help:      "Investments queued in the reporter awaiting maturity",
		},
	)

	// WebSocket metrics
	c.WSConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
		[]string{},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	c.WSMessageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "websocket",
			Name:      "message_latency_ms",
			Help:      "WebSocket message latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		},
		[]string{"channel"},
	)

	c.WSSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "websocket",
			Name:      "subscriptions",
			Help:      "Number of active subscriptions per channel",
		},
		[]string{"channel"},
	)

	// API metrics
	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.APIErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Total API errors",
		},
		[]string{"method", "path", "error_type"},
	)

	c.RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edenvest",
			Subsystem: "api",
			Name:      "rate_limit_hits",
			Help:      "Total rate limit hits",
		},
		[]string{"limit_type"},
	)

	// System metrics
	c.ActiveInvestors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "system",
			Name:      "active_investors",
			Help:      "Number of distinct investors with open positions",
		},
	)

	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edenvest",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block time in milliseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000},
		},
		[]string{},
	)

	c.TxPoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "system",
			Name:      "tx_pool_size",
			Help:      "Transaction pool size",
		},
	)

	c.PeerCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "edenvest",
			Subsystem: "system",
			Name:      "peer_count",
			Help:      "Number of connected peers",
		},
	)

	// Register all metrics
	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	// Deposit metrics
	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.DepositAmount)
	prometheus.MustRegister(c.DepositLatency)

	// Withdrawal metrics
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalAmount)
	prometheus.MustRegister(c.WithdrawalLatency)

	// Share metrics
	prometheus.MustRegister(c.SharesMinted)
	prometheus.MustRegister(c.SharesBurned)
	prometheus.MustRegister(c.ShareSupply)

	// Fee metrics
	prometheus.MustRegister(c.FeeSharesCollected)
	prometheus.MustRegister(c.FeesWithdrawn)
	prometheus.MustRegister(c.FeeBalance)

	// Swap metrics
	prometheus.MustRegister(c.SwapsTotal)
	prometheus.MustRegister(c.SwapVolume)
	prometheus.MustRegister(c.SwapInconsistencies)
	prometheus.MustRegister(c.SwapLatency)

	// Pool metrics
	prometheus.MustRegister(c.PoolTVL)
	prometheus.MustRegister(c.PoolDeposited)
	prometheus.MustRegister(c.PoolWithdrawn)
	prometheus.MustRegister(c.ActiveInvestments)

	// Maturity metrics
	prometheus.MustRegister(c.MaturitiesReached)
	prometheus.MustRegister(c.ReturnsReported)
	prometheus.MustRegister(c.PendingMaturities)

	// Reporter metrics
	prometheus.MustRegister(c.ReporterBatchesSubmitted)
	prometheus.MustRegister(c.ReporterBatchFailures)
	prometheus.MustRegister(c.ReporterQueueDepth)

	// WebSocket metrics
	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)
	prometheus.MustRegister(c.WSMessageLatency)
	prometheus.MustRegister(c.WSSubscriptions)

	// API metrics
	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.APIErrorsTotal)
	prometheus.MustRegister(c.RateLimitHits)

	// System metrics
	prometheus.MustRegister(c.ActiveInvestors)
	prometheus.MustRegister(c.BlockHeight)
	prometheus.MustRegister(c.BlockTime)
	prometheus.MustRegister(c.TxPoolSize)
	prometheus.MustRegister(c.PeerCount)
}

// ============ Recording Helpers ============

// RecordDeposit records a deposit event. path is "direct" or "swap".
func (c *Collector) RecordDeposit(poolID, path string, amount float64) {
	c.DepositsTotal.WithLabelValues(poolID, path).Inc()
	c.DepositAmount.WithLabelValues(poolID).Add(amount)
}

// RecordDepositLatency records deposit processing latency
func (c *Collector) RecordDepositLatency(poolID string, latencyMs float64) {
	c.DepositLatency.WithLabelValues(poolID).Observe(latencyMs)
}

// RecordWithdrawal records a withdrawal. returnType is "actual" when the
// payout used a reported return, "expected" for the projected fallback.
func (c *Collector) RecordWithdrawal(poolID, returnType string, amount float64) {
	c.WithdrawalsTotal.WithLabelValues(poolID, returnType).Inc()
	c.WithdrawalAmount.WithLabelValues(poolID).Add(amount)
}

// RecordShareMint records minted shares and the share of them taken as fee
func (c *Collector) RecordShareMint(poolID string, minted, fee float64) {
	c.SharesMinted.WithLabelValues(poolID).Add(minted)
	if fee > 0 {
		c.FeeSharesCollected.WithLabelValues(poolID).Add(fee)
	}
}

// RecordShareBurn records burned shares
func (c *Collector) RecordShareBurn(poolID string, burned float64) {
	c.SharesBurned.WithLabelValues(poolID).Add(burned)
}

// RecordSwap records a swap-and-invest outcome
func (c *Collector) RecordSwap(poolID, tokenIn, status string, volume float64) {
	c.SwapsTotal.WithLabelValues(poolID, tokenIn, status).Inc()
	if volume > 0 {
		c.SwapVolume.WithLabelValues(poolID).Add(volume)
	}
}

// RecordSwapInconsistency records a swap rejected by the balance-delta check
func (c *Collector) RecordSwapInconsistency(poolID, tokenIn string) {
	c.SwapInconsistencies.WithLabelValues(poolID, tokenIn).Inc()
	c.SwapsTotal.WithLabelValues(poolID, tokenIn, "inconsistent").Inc()
}

// UpdatePoolGauges refreshes per-pool gauges
func (c *Collector) UpdatePoolGauges(poolID string, tvl, deposited, withdrawn, supply float64) {
	c.PoolTVL.WithLabelValues(poolID).Set(tvl)
	c.PoolDeposited.WithLabelValues(poolID).Set(deposited)
	c.PoolWithdrawn.WithLabelValues(poolID).Set(withdrawn)
	c.ShareSupply.WithLabelValues(poolID).Set(supply)
}

// RecordMaturity records an investment reaching its maturity time
func (c *Collector) RecordMaturity(poolID string) {
	c.MaturitiesReached.WithLabelValues(poolID).Inc()
}

// RecordReturnReported records an actual return landing on an investment
func (c *Collector) RecordReturnReported(poolID string, count int) {
	c.ReturnsReported.WithLabelValues(poolID).Add(float64(count))
}

// RecordReporterBatch records a reporter batch submission outcome
func (c *Collector) RecordReporterBatch(poolID string, failed bool) {
	if failed {
		c.ReporterBatchFailures.WithLabelValues(poolID).Inc()
		return
	}
	c.ReporterBatchesSubmitted.WithLabelValues(poolID).Inc()
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection records WebSocket connection changes
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.WithLabelValues().Add(float64(delta))
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string, latencyMs float64) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
	c.WSMessageLatency.WithLabelValues(channel).Observe(latencyMs)
}

// UpdateSystemMetrics updates system-level metrics
func (c *Collector) UpdateSystemMetrics(blockHeight int64, txPoolSize int, peerCount int) {
	c.BlockHeight.Set(float64(blockHeight))
	c.TxPoolSize.Set(float64(txPoolSize))
	c.PeerCount.Set(float64(peerCount))
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
