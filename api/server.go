package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/eden-finance/vest-sub001/api/handlers"
	"github.com/eden-finance/vest-sub001/api/middleware"
	"github.com/eden-finance/vest-sub001/api/types"
	"github.com/eden-finance/vest-sub001/api/websocket"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	wsServer   *websocket.Server
	config     *Config
	mockMode   bool

	// Services
	poolService       types.PoolService
	investmentService types.InvestmentService
	treasuryService   types.TreasuryService

	// Handlers
	poolHandler       *handlers.PoolHandler
	investmentHandler *handlers.InvestmentHandler
	treasuryHandler   *handlers.TreasuryHandler

	// Rate limiter
	rateLimiter *middleware.RateLimiter
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MockMode         bool
	DisableRateLimit bool // For testing purposes
}

// DefaultConfig returns default configuration
// NOTE: MockMode defaults to false (keeper mode) for production safety.
// Use --mock flag explicitly for development/testing with mock data.
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MockMode:     false, // Default to keeper mode - use --mock for development
	}
}

// NewServer creates a new API server backed by the mock service
func NewServer(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	// Create mock service
	mockService := NewMockService()

	// Create rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	s := &Server{
		config:            config,
		wsServer:          websocket.NewServer(wsConfig),
		mockMode:          config.MockMode,
		poolService:       mockService,
		investmentService: mockService,
		treasuryService:   mockService,
		rateLimiter:       rateLimiter,
	}

	// Create handlers
	s.poolHandler = handlers.NewPoolHandler(s.poolService)
	s.investmentHandler = handlers.NewInvestmentHandler(s.investmentService)
	s.treasuryHandler = handlers.NewTreasuryHandler(s.treasuryService)

	return s
}

// NewServerWithServices creates a new API server with custom services
func NewServerWithServices(config *Config, poolSvc types.PoolService, investmentSvc types.InvestmentService, treasurySvc types.TreasuryService) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	// Create rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	s := &Server{
		config:            config,
		wsServer:          websocket.NewServer(wsConfig),
		mockMode:          config.MockMode,
		poolService:       poolSvc,
		investmentService: investmentSvc,
		treasuryService:   treasurySvc,
		rateLimiter:       rateLimiter,
	}

	// Create handlers
	s.poolHandler = handlers.NewPoolHandler(s.poolService)
	s.investmentHandler = handlers.NewInvestmentHandler(s.investmentService)
	s.treasuryHandler = handlers.NewTreasuryHandler(s.treasuryService)

	return s
}

// NewServerWithKeeperService creates an API server running the full keeper
// stack over an in-memory store. Every request goes through the same code
// paths a chain node would execute.
func NewServerWithKeeperService(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	config.MockMode = false

	keeperService := NewKeeperService()

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	// Create rate limiter
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	s := &Server{
		config:            config,
		wsServer:          websocket.NewServer(wsConfig),
		mockMode:          false,
		poolService:       keeperService,
		investmentService: keeperService,
		treasuryService:   keeperService,
		rateLimiter:       rateLimiter,
	}

	// Create handlers
	s.poolHandler = handlers.NewPoolHandler(s.poolService)
	s.investmentHandler = handlers.NewInvestmentHandler(s.investmentService)
	s.treasuryHandler = handlers.NewTreasuryHandler(s.treasuryService)

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	mux := http.NewServeMux()

	// Health check (support both /health and /v1/health for compatibility)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Pool endpoints (read-only)
	mux.HandleFunc("/v1/pools", s.poolHandler.GetPools)
	mux.HandleFunc("/v1/pools/", s.handlePoolRoutes)

	// Deposit and withdrawal operations
	mux.HandleFunc("/v1/invest", s.investmentHandler.HandleInvest)
	mux.HandleFunc("/v1/invest/swap", s.investmentHandler.HandleInvestWithSwap)
	mux.HandleFunc("/v1/withdraw", s.investmentHandler.HandleWithdraw)

	// Investment and receipt lookups
	mux.HandleFunc("/v1/investments/", s.investmentHandler.HandleInvestment)
	mux.HandleFunc("/v1/receipts/", s.investmentHandler.HandleReceipt)

	// Investor-specific endpoints
	mux.HandleFunc("/v1/investors/", s.handleInvestorRoutes)

	// Maturity queue
	mux.HandleFunc("/v1/maturities/pending", s.investmentHandler.HandlePendingMaturities)

	// Treasury endpoints
	mux.HandleFunc("/v1/treasury", s.treasuryHandler.HandleTreasury)
	mux.HandleFunc("/v1/treasury/events", s.treasuryHandler.HandleFeeEvents)

	// WebSocket
	mux.HandleFunc("/ws", s.wsServer.GetHub().ServeWS)

	// Apply middleware chain: CORS -> RateLimit -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(mux)
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(mux),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	// Start WebSocket hub
	go s.wsServer.GetHub().Run()

	// Start the pool stats and maturity broadcaster
	go s.startStatsBroadcaster()

	log.Printf("API server starting on %s (mock mode: %v)", addr, s.mockMode)
	log.Printf("Endpoints enabled: /v1/pools, /v1/invest, /v1/withdraw, /v1/treasury")
	if s.config.DisableRateLimit {
		log.Printf("Rate limiting DISABLED (for testing)")
	} else {
		log.Printf("Rate limiting enabled: %d req/s per IP", 100)
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "keeper"
	modeDescription := "Full keeper stack over an in-memory store (standalone mode)"
	if s.mockMode {
		mode = "mock"
		modeDescription = "Using mock data for development/testing"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "healthy",
		"timestamp":        time.Now().Unix(),
		"mode":             mode,
		"mode_description": modeDescription,
		"warning":          "This API uses in-memory storage. For production, connect to a running chain node.",
	})
}

// handlePoolRoutes handles /v1/pools/{poolId}/* endpoints
func (s *Server) handlePoolRoutes(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/pools/{poolId} or /v1/pools/{poolId}/{endpoint}
	path := r.URL.Path[len("/v1/pools/"):]

	// Extract pool ID and endpoint
	poolID := path
	endpoint := ""
	for i, c := range path {
		if c == '/' {
			poolID = path[:i]
			endpoint = path[i+1:]
			break
		}
	}

	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	// Set pool ID in request for handler
	r.Header.Set("X-Pool-ID", poolID)

	switch endpoint {
	case "":
		s.poolHandler.GetPool(w, r)
	case "stats":
		s.poolHandler.GetPoolStats(w, r)
	case "fees":
		s.poolHandler.GetPoolFees(w, r)
	case "investments":
		s.investmentHandler.GetPoolInvestments(w, r)
	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// handleInvestorRoutes handles /v1/investors/{address}/* endpoints
func (s *Server) handleInvestorRoutes(w http.ResponseWriter, r *http.Request) {
	// Parse path: /v1/investors/{address} or /v1/investors/{address}/{endpoint}
	path := r.URL.Path[len("/v1/investors/"):]

	// Extract address and endpoint
	address := path
	endpoint := ""
	for i, c := range path {
		if c == '/' {
			address = path[:i]
			endpoint = path[i+1:]
			break
		}
	}

	if address == "" {
		writeError(w, http.StatusBadRequest, "Investor address required")
		return
	}

	// Set address in request for handler
	r.Header.Set("X-Investor-Address", address)

	switch endpoint {
	case "", "investments":
		s.investmentHandler.GetInvestorInvestments(w, r)
	case "receipts":
		s.investmentHandler.GetInvestorReceipts(w, r)
	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

// startStatsBroadcaster periodically pushes pool stats, fee accruals and
// maturity events to subscribed WebSocket clients.
func (s *Server) startStatsBroadcaster() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	// Investment IDs already announced on the maturity feed
	announced := make(map[string]bool)

	for range ticker.C {
		ctx := context.Background()

		pools, err := s.poolService.ListPools(ctx)
		if err != nil {
			continue
		}

		for _, pool := range pools {
			stats, err := s.poolService.GetPoolStats(ctx, pool.PoolID)
			if err != nil || stats == nil {
				continue
			}

			s.wsServer.BroadcastPoolStats(&websocket.PoolStatsMessage{
				PoolID:            stats.PoolID,
				TotalDeposited:    stats.TotalDeposited,
				TotalWithdrawn:    stats.TotalWithdrawn,
				TotalShares:       stats.TotalShares,
				ActiveInvestments: stats.ActiveInvestments,
				AcceptingDeposits: pool.AcceptingDeposits,
				Timestamp:         nowMillis(),
			})

			if fees, err := s.poolService.GetPoolFees(ctx, pool.PoolID); err == nil && fees != nil {
				s.wsServer.BroadcastPoolFees(&websocket.FeeMessage{
					PoolID:         fees.PoolID,
					Denom:          fees.Denom,
					TotalCollected: fees.TotalCollected,
					Collections:    fees.Collections,
					Timestamp:      nowMillis(),
				})
			}
		}

		// Announce investments that crossed their maturity time
		pending, err := s.investmentService.PendingMaturities(ctx, 100)
		if err != nil {
			continue
		}

		for _, inv := range pending {
			if announced[inv.InvestmentID] {
				continue
			}
			announced[inv.InvestmentID] = true

			s.wsServer.BroadcastMaturity(&websocket.MaturityMessage{
				InvestmentID:   inv.InvestmentID,
				PoolID:         inv.PoolID,
				Investor:       inv.Investor,
				Amount:         inv.Amount,
				ExpectedReturn: inv.ExpectedReturn,
				MaturityTime:   inv.MaturityTime,
				Timestamp:      nowMillis(),
			})

			s.wsServer.BroadcastInvestment(inv.Investor, &websocket.InvestmentMessage{
				InvestmentID:   inv.InvestmentID,
				PoolID:         inv.PoolID,
				Investor:       inv.Investor,
				Amount:         inv.Amount,
				ExpectedReturn: inv.ExpectedReturn,
				MaturityTime:   inv.MaturityTime,
				Status:         inv.Status,
				Timestamp:      nowMillis(),
			})
		}
	}
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Investor-Address")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
