// Package optimization holds runtime tuning for the service: channel
// buffers, polling cadence and LLM retry pacing.
package optimization

import (
	"time"
)

// Config holds tuned parameters.
type Config struct {
	// Channel buffer sizes
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Observer stream
	EventPollInterval time.Duration
	MaxClients        int

	// LLM retries
	LLMBackoff     time.Duration // multiplied by the attempt number
	RequestTimeout time.Duration // per decision, including retries

	// Database connections
	DBMaxOpenConns int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		EventPollInterval: 200 * time.Millisecond,
		MaxClients:        64,

		LLMBackoff:     500 * time.Millisecond,
		RequestTimeout: 45 * time.Second,

		DBMaxOpenConns: 4,
	}
}

// LowResourceConfig returns minimal settings for development and tests.
func LowResourceConfig() *Config {
	return &Config{
		BroadcastChannelBuffer: 16,
		ClientSendBuffer:       8,

		EventPollInterval: 50 * time.Millisecond,
		MaxClients:        8,

		LLMBackoff:     10 * time.Millisecond,
		RequestTimeout: 5 * time.Second,

		DBMaxOpenConns: 1,
	}
}

// Recommendations provides suggestions based on observed metrics.
type Recommendations struct {
	IncreaseBroadcastBuffer bool
	IncreaseBackoff         bool
	IncreaseDBConnections   bool
	Notes                   []string
}

// Analyze examines a metrics snapshot and returns tuning recommendations.
func Analyze(metrics map[string]interface{}) *Recommendations {
	rec := &Recommendations{
		Notes: make([]string, 0),
	}

	if llm, ok := metrics["llm"].(map[string]interface{}); ok {
		requests, _ := llm["requests"].(int64)
		fallbacks, _ := llm["fallbacks"].(int64)
		if requests >= 10 && fallbacks*2 > requests {
			rec.IncreaseBackoff = true
			rec.Notes = append(rec.Notes, "More than half of LLM drafts fell back to the engine - slow down retries")
		}
	}

	if events, ok := metrics["events"].(map[string]interface{}); ok {
		if errors, ok := events["errors"].(int64); ok && errors > 0 {
			rec.IncreaseDBConnections = true
			rec.Notes = append(rec.Notes, "Ledger write errors detected - check the DB connection pool")
		}
	}

	if ws, ok := metrics["websocket"].(map[string]interface{}); ok {
		if errors, ok := ws["errors"].(int64); ok && errors > 0 {
			rec.IncreaseBroadcastBuffer = true
			rec.Notes = append(rec.Notes, "WebSocket errors detected - increase client send buffer")
		}
	}

	return rec
}

// ApplyRecommendations modifies config based on recommendations.
func ApplyRecommendations(config *Config, rec *Recommendations) *Config {
	if rec.IncreaseBroadcastBuffer {
		config.BroadcastChannelBuffer *= 2
		config.ClientSendBuffer *= 2
	}
	if rec.IncreaseBackoff {
		config.LLMBackoff *= 2
	}
	if rec.IncreaseDBConnections {
		config.DBMaxOpenConns = int(float64(config.DBMaxOpenConns)*1.5) + 1
	}
	return config
}
