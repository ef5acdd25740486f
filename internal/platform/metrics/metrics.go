// Package metrics provides observability for the agent service.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Decision kinds counted by RecordDecision.
const (
	KindSpeech    = "speech"
	KindVote      = "vote"
	KindNight     = "night"
	KindLastWords = "last_words"
)

// Collector gathers service metrics.
type Collector struct {
	// Decision metrics
	Speeches     int64
	Votes        int64
	NightActions int64
	LastWords    int64
	Idles        int64 // no-op night actions and abstentions
	Blocked      int64 // hard-rule rejections
	DecisionLat  int64 // nanoseconds, summed
	Errors       map[string]int64

	// Event metrics
	EventsWritten    int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// LLM metrics
	LLMRequests   int64
	LLMFallbacks  int64
	LLMTokensUsed int64
	LLMCostUSD    float64
	LLMLatencySum int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{StartTime: time.Now(), Errors: make(map[string]int64)}
}

var collector = NewCollector()

// Get returns the process-wide collector.
func Get() *Collector {
	return collector
}

// RecordDecision records a served decision. idle marks a no-op response.
func (c *Collector) RecordDecision(kind string, idle bool, latency time.Duration) {
	switch kind {
	case KindSpeech:
		atomic.AddInt64(&c.Speeches, 1)
	case KindVote:
		atomic.AddInt64(&c.Votes, 1)
	case KindNight:
		atomic.AddInt64(&c.NightActions, 1)
	case KindLastWords:
		atomic.AddInt64(&c.LastWords, 1)
	}
	if idle {
		atomic.AddInt64(&c.Idles, 1)
	}
	atomic.AddInt64(&c.DecisionLat, int64(latency))
}

// RecordBlocked records an action replaced by a hard rule.
func (c *Collector) RecordBlocked() {
	atomic.AddInt64(&c.Blocked, 1)
}

// RecordError counts a request error by kind.
func (c *Collector) RecordError(kind string) {
	c.mu.Lock()
	c.Errors[kind]++
	c.mu.Unlock()
}

// RecordEventWrite records a ledger write.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outgoing WebSocket message.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordLLMCall records an LLM API call.
func (c *Collector) RecordLLMCall(tokens int, cost float64, latency time.Duration) {
	atomic.AddInt64(&c.LLMRequests, 1)
	atomic.AddInt64(&c.LLMTokensUsed, int64(tokens))
	atomic.AddInt64(&c.LLMLatencySum, int64(latency))

	c.mu.Lock()
	c.LLMCostUSD += cost
	c.mu.Unlock()
}

// RecordLLMFallback records a draft that was rejected or never arrived.
func (c *Collector) RecordLLMFallback() {
	atomic.AddInt64(&c.LLMFallbacks, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	speeches := atomic.LoadInt64(&c.Speeches)
	votes := atomic.LoadInt64(&c.Votes)
	nights := atomic.LoadInt64(&c.NightActions)
	lastWords := atomic.LoadInt64(&c.LastWords)
	total := speeches + votes + nights + lastWords
	llmRequests := atomic.LoadInt64(&c.LLMRequests)

	var decisionAvg, llmAvg float64
	if total > 0 {
		decisionAvg = float64(atomic.LoadInt64(&c.DecisionLat)) / float64(total) / 1e6 // ms
	}
	if llmRequests > 0 {
		llmAvg = float64(atomic.LoadInt64(&c.LLMLatencySum)) / float64(llmRequests) / 1e9 // seconds
	}
	errs := make(map[string]int64, len(c.Errors))
	for k, v := range c.Errors {
		errs[k] = v
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"decisions": map[string]interface{}{
			"speech":         speeches,
			"vote":           votes,
			"night":          nights,
			"last_words":     lastWords,
			"idle":           atomic.LoadInt64(&c.Idles),
			"blocked":        atomic.LoadInt64(&c.Blocked),
			"avg_latency_ms": decisionAvg,
		},

		"errors": errs,

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"llm": map[string]interface{}{
			"requests":        llmRequests,
			"fallbacks":       atomic.LoadInt64(&c.LLMFallbacks),
			"tokens_used":     atomic.LoadInt64(&c.LLMTokensUsed),
			"cost_usd":        c.LLMCostUSD,
			"avg_latency_sec": llmAvg,
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")
		json.NewEncoder(w).Encode(c.Snapshot())
	}
}

// PrometheusHandler returns metrics in Prometheus text format.
func (c *Collector) PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		fmt.Fprintf(w, "# HELP werewolf_decisions_total Decisions served\n")
		fmt.Fprintf(w, "# TYPE werewolf_decisions_total counter\n")
		fmt.Fprintf(w, "werewolf_decisions_total{kind=\"speech\"} %d\n", atomic.LoadInt64(&c.Speeches))
		fmt.Fprintf(w, "werewolf_decisions_total{kind=\"vote\"} %d\n", atomic.LoadInt64(&c.Votes))
		fmt.Fprintf(w, "werewolf_decisions_total{kind=\"night\"} %d\n", atomic.LoadInt64(&c.NightActions))
		fmt.Fprintf(w, "werewolf_decisions_total{kind=\"last_words\"} %d\n\n", atomic.LoadInt64(&c.LastWords))

		fmt.Fprintf(w, "# HELP werewolf_idle_total No-op decisions\n")
		fmt.Fprintf(w, "# TYPE werewolf_idle_total counter\n")
		fmt.Fprintf(w, "werewolf_idle_total %d\n\n", atomic.LoadInt64(&c.Idles))

		fmt.Fprintf(w, "# HELP werewolf_blocked_total Actions replaced by a hard rule\n")
		fmt.Fprintf(w, "# TYPE werewolf_blocked_total counter\n")
		fmt.Fprintf(w, "werewolf_blocked_total %d\n\n", atomic.LoadInt64(&c.Blocked))

		fmt.Fprintf(w, "# HELP werewolf_events_written Ledger writes\n")
		fmt.Fprintf(w, "# TYPE werewolf_events_written counter\n")
		fmt.Fprintf(w, "werewolf_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP werewolf_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE werewolf_ws_connections gauge\n")
		fmt.Fprintf(w, "werewolf_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP werewolf_llm_requests Total LLM API requests\n")
		fmt.Fprintf(w, "# TYPE werewolf_llm_requests counter\n")
		fmt.Fprintf(w, "werewolf_llm_requests %d\n\n", atomic.LoadInt64(&c.LLMRequests))

		fmt.Fprintf(w, "# HELP werewolf_llm_fallbacks Drafts replaced by the engine\n")
		fmt.Fprintf(w, "# TYPE werewolf_llm_fallbacks counter\n")
		fmt.Fprintf(w, "werewolf_llm_fallbacks %d\n\n", atomic.LoadInt64(&c.LLMFallbacks))

		fmt.Fprintf(w, "# HELP werewolf_llm_tokens_used Total tokens consumed\n")
		fmt.Fprintf(w, "# TYPE werewolf_llm_tokens_used counter\n")
		fmt.Fprintf(w, "werewolf_llm_tokens_used %d\n\n", atomic.LoadInt64(&c.LLMTokensUsed))

		c.mu.RLock()
		fmt.Fprintf(w, "# HELP werewolf_llm_cost_usd Total LLM cost in USD\n")
		fmt.Fprintf(w, "# TYPE werewolf_llm_cost_usd counter\n")
		fmt.Fprintf(w, "werewolf_llm_cost_usd %.4f\n", c.LLMCostUSD)
		c.mu.RUnlock()
	}
}
