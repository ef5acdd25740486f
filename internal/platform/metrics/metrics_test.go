package metrics

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSnapshotCounts(t *testing.T) {
	c := NewCollector()
	c.RecordDecision(KindVote, false, 2*time.Millisecond)
	c.RecordDecision(KindNight, true, 4*time.Millisecond)
	c.RecordBlocked()
	c.RecordError("malformed_context")
	c.RecordError("malformed_context")
	c.RecordEventWrite(nil)
	c.RecordEventWrite(errors.New("x"))
	c.RecordLLMCall(100, 0.01, time.Second)
	c.RecordLLMFallback()

	snap := c.Snapshot()
	decisions := snap["decisions"].(map[string]interface{})
	if decisions["vote"].(int64) != 1 || decisions["night"].(int64) != 1 || decisions["idle"].(int64) != 1 {
		t.Errorf("decisions = %v", decisions)
	}
	if avg := decisions["avg_latency_ms"].(float64); avg != 3 {
		t.Errorf("avg latency = %v", avg)
	}
	if errs := snap["errors"].(map[string]int64); errs["malformed_context"] != 2 {
		t.Errorf("errors = %v", errs)
	}
	llm := snap["llm"].(map[string]interface{})
	if llm["fallbacks"].(int64) != 1 || llm["tokens_used"].(int64) != 100 {
		t.Errorf("llm = %v", llm)
	}
}

func TestHandlers(t *testing.T) {
	c := NewCollector()
	c.RecordDecision(KindSpeech, false, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler()(rec, httptest.NewRequest("GET", "/metrics", nil))
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if _, ok := body["decisions"]; !ok {
		t.Errorf("body = %v", body)
	}

	rec = httptest.NewRecorder()
	c.PrometheusHandler()(rec, httptest.NewRequest("GET", "/metrics/prometheus", nil))
	if !strings.Contains(rec.Body.String(), `werewolf_decisions_total{kind="speech"} 1`) {
		t.Errorf("prometheus output:\n%s", rec.Body.String())
	}
}
