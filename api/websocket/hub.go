package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by channel
	clients  map[*Client]bool
	channels map[string]map[*Client]bool // channel -> clients

	// Subscription management
	subscriptions map[string]map[*Client]bool // topic -> clients

	// Inbound messages from clients
	broadcast chan []byte

	// Register/unregister requests
	register   chan *Client
	unregister chan *Client

	// Channel subscription requests
	subscribe   chan *SubscriptionRequest
	unsubscribe chan *SubscriptionRequest

	// Message buffers for the periodic streams
	poolStatsBuffer map[string]*PoolStatsMessage
	feesBuffer      map[string]*FeeMessage

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Configuration
	config *HubConfig
}

// HubConfig contains hub configuration
type HubConfig struct {
	// Update intervals
	PoolStatsInterval time.Duration // Default: 1s
	FeesInterval      time.Duration // Default: 5s

	// Connection limits
	MaxSubscriptions int

	// Rate limiting
	MessageRateLimit int // Messages per second per client
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() *HubConfig {
	return &HubConfig{
		PoolStatsInterval: time.Second,
		FeesInterval:      5 * time.Second,
		MaxSubscriptions:  50,
		MessageRateLimit:  100,
	}
}

// SubscriptionRequest represents a subscription request
type SubscriptionRequest struct {
	Client  *Client
	Channel string
	Action  string // "subscribe" or "unsubscribe"
}

// NewHub creates a new Hub
func NewHub(config *HubConfig) *Hub {
	if config == nil {
		config = DefaultHubConfig()
	}

	return &Hub{
		clients:         make(map[*Client]bool),
		channels:        make(map[string]map[*Client]bool),
		subscriptions:   make(map[string]map[*Client]bool),
		broadcast:       make(chan []byte, 256),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		subscribe:       make(chan *SubscriptionRequest, 256),
		unsubscribe:     make(chan *SubscriptionRequest, 256),
		poolStatsBuffer: make(map[string]*PoolStatsMessage),
		feesBuffer:      make(map[string]*FeeMessage),
		config:          config,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	statsTicker := time.NewTicker(h.config.PoolStatsInterval)
	feesTicker := time.NewTicker(h.config.FeesInterval)

	defer statsTicker.Stop()
	defer feesTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.subscribe:
			h.handleSubscription(req)

		case req := <-h.unsubscribe:
			h.handleUnsubscription(req)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-statsTicker.C:
			h.broadcastPoolStats()

		case <-feesTicker.C:
			h.broadcastFees()
		}
	}
}

// registerClient adds a new client
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)

		// Remove from all channels
		for channel, clients := range h.channels {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.channels, channel)
			}
		}

		// Remove from all subscriptions
		for topic := range h.subscriptions {
			delete(h.subscriptions[topic], client)
		}

		close(client.send)
	}
}

// handleSubscription handles a subscription request
func (h *Hub) handleSubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]bool)
	}
	h.channels[channel][client] = true

	// Send subscription confirmation
	confirmation := &WSMessage{
		Type:    "subscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// handleUnsubscription handles an unsubscription request
func (h *Hub) handleUnsubscription(req *SubscriptionRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channel := req.Channel
	client := req.Client

	if clients, ok := h.channels[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.channels, channel)
		}
	}

	// Send unsubscription confirmation
	confirmation := &WSMessage{
		Type:    "unsubscribed",
		Channel: channel,
		Data:    nil,
	}
	data, _ := json.Marshal(confirmation)
	client.send <- data
}

// broadcastMessage sends a message to all clients in a channel
func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client buffer is full, skip
		}
	}
}

// BroadcastToChannel sends a message to all clients subscribed to a channel
func (h *Hub) BroadcastToChannel(channel string, message interface{}) {
	h.mu.RLock()
	clients, ok := h.channels[channel]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Make a copy of clients to avoid holding lock during send
	clientList := make([]*Client, 0, len(clients))
	for client := range clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	for _, client := range clientList {
		select {
		case client.send <- data:
		default:
			// Client buffer is full, skip
		}
	}
}

// ============ Channel-specific broadcasts ============

// UpdatePoolStats updates the stats buffer for a pool
func (h *Hub) UpdatePoolStats(poolID string, stats *PoolStatsMessage) {
	h.mu.Lock()
	h.poolStatsBuffer[poolID] = stats
	h.mu.Unlock()
}

// UpdatePoolFees updates the fee buffer for a pool
func (h *Hub) UpdatePoolFees(poolID string, fees *FeeMessage) {
	h.mu.Lock()
	h.feesBuffer[poolID] = fees
	h.mu.Unlock()
}

// broadcastPoolStats broadcasts all buffered pool stats updates
func (h *Hub) broadcastPoolStats() {
	h.mu.RLock()
	stats := make(map[string]*PoolStatsMessage)
	for k, v := range h.poolStatsBuffer {
		stats[k] = v
	}
	h.mu.RUnlock()

	for poolID, s := range stats {
		channel := "pools:" + poolID
		msg := &WSMessage{
			Type:    "pool_stats",
			Channel: channel,
			Data:    s,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// broadcastFees broadcasts all buffered fee updates
func (h *Hub) broadcastFees() {
	h.mu.RLock()
	fees := make(map[string]*FeeMessage)
	for k, v := range h.feesBuffer {
		fees[k] = v
	}
	h.mu.RUnlock()

	for poolID, f := range fees {
		channel := "fees:" + poolID
		msg := &WSMessage{
			Type:    "fees",
			Channel: channel,
			Data:    f,
		}
		h.BroadcastToChannel(channel, msg)
	}
}

// BroadcastMaturity broadcasts an investment reaching maturity
func (h *Hub) BroadcastMaturity(maturity *MaturityMessage) {
	msg := &WSMessage{
		Type:    "maturity",
		Channel: "maturities",
		Data:    maturity,
	}
	h.BroadcastToChannel("maturities", msg)
}

// BroadcastInvestment broadcasts an investment update to a specific investor
func (h *Hub) BroadcastInvestment(investor string, investment *InvestmentMessage) {
	channel := "investments:" + investor
	msg := &WSMessage{
		Type:    "investment",
		Channel: channel,
		Data:    investment,
	}
	h.BroadcastToChannel(channel, msg)
}

// BroadcastWithdrawal broadcasts a withdrawal to a specific investor
func (h *Hub) BroadcastWithdrawal(investor string, withdrawal *WithdrawalMessage) {
	channel := "investments:" + investor
	msg := &WSMessage{
		Type:    "withdrawal",
		Channel: channel,
		Data:    withdrawal,
	}
	h.BroadcastToChannel(channel, msg)
}

// ============ Message Types ============

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Channel string      `json:"channel"`
	Data    interface{} `json:"data,omitempty"`
}

// PoolStatsMessage represents a pool stats update
type PoolStatsMessage struct {
	PoolID            string `json:"pool_id"`
	TotalDeposited    string `json:"total_deposited"`
	TotalWithdrawn    string `json:"total_withdrawn"`
	TotalShares       string `json:"total_shares"`
	ActiveInvestments int64  `json:"active_investments"`
	AcceptingDeposits bool   `json:"accepting_deposits"`
	Timestamp         int64  `json:"timestamp"`
}

// FeeMessage represents a pool fee accrual update
type FeeMessage struct {
	PoolID         string `json:"pool_id"`
	Denom          string `json:"denom"`
	TotalCollected string `json:"total_collected"`
	Collections    int64  `json:"collections"`
	Timestamp      int64  `json:"timestamp"`
}

// MaturityMessage represents an investment crossing its maturity time
type MaturityMessage struct {
	InvestmentID   string `json:"investment_id"`
	PoolID         string `json:"pool_id"`
	Investor       string `json:"investor"`
	Amount         string `json:"amount"`
	ExpectedReturn string `json:"expected_return"`
	MaturityTime   int64  `json:"maturity_time"`
	Timestamp      int64  `json:"timestamp"`
}

// InvestmentMessage represents an investment update
type InvestmentMessage struct {
	InvestmentID   string `json:"investment_id"`
	PoolID         string `json:"pool_id"`
	Investor       string `json:"investor"`
	Amount         string `json:"amount"`
	Shares         string `json:"shares"`
	ExpectedReturn string `json:"expected_return"`
	MaturityTime   int64  `json:"maturity_time"`
	Status         string `json:"status"`
	Timestamp      int64  `json:"timestamp"`
}

// WithdrawalMessage represents a completed withdrawal
type WithdrawalMessage struct {
	InvestmentID string `json:"investment_id"`
	PoolID       string `json:"pool_id"`
	Investor     string `json:"investor"`
	Payout       string `json:"payout"`
	SharesBurned string `json:"shares_burned"`
	Matured      bool   `json:"matured"`
	Timestamp    int64  `json:"timestamp"`
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelCount returns the number of active channels
func (h *Hub) GetChannelCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// GetChannelClientCount returns the number of clients in a channel
func (h *Hub) GetChannelClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.channels[channel]; ok {
		return len(clients)
	}
	return 0
}

// ServeWS handles WebSocket upgrade requests
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = generateID()
	}

	investor := r.URL.Query().Get("investor")
	ip := getClientIPFromRequest(r)

	client := NewClient(h, conn, clientID, investor, ip)

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// Helper function to get client IP
func getClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

// Generate a simple ID
func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
