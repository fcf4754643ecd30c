package domain

import "time"

// ConversationTurn is one request/response exchange.
type ConversationTurn struct {
	Request   string
	Response  string
	Timestamp time.Time
}

// Route records which dispatcher path handled an input.
type Route string

const (
	RouteCommand   Route = "command"
	RouteIntent    Route = "intent"
	RouteHeuristic Route = "heuristic"
	RouteFallback  Route = "fallback"
)

// TurnRecord is the persisted form of a dispatched input.
type TurnRecord struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	Route     Route     `json:"route"`
	Domain    Domain    `json:"domain"`
	Operation string    `json:"operation"`
	Model     string    `json:"model"`
	Success   bool      `json:"success"`
}

// RouteCount is one row of the /stats table.
type RouteCount struct {
	Route     Route
	Domain    Domain
	Operation string
	Count     int
}

// UsageStats aggregates the turn log.
type UsageStats struct {
	Total    int
	Failures int
	Sessions int
	ByRoute  []RouteCount
	First    time.Time
	Last     time.Time
}
