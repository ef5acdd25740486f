package optimization

import (
	"testing"
	"time"
)

func TestAnalyzeAndApply(t *testing.T) {
	snapshot := map[string]interface{}{
		"llm":       map[string]interface{}{"requests": int64(10), "fallbacks": int64(7)},
		"events":    map[string]interface{}{"errors": int64(1)},
		"websocket": map[string]interface{}{"errors": int64(0)},
	}
	rec := Analyze(snapshot)
	if !rec.IncreaseBackoff || !rec.IncreaseDBConnections || rec.IncreaseBroadcastBuffer {
		t.Fatalf("rec = %+v", rec)
	}
	if len(rec.Notes) != 2 {
		t.Errorf("notes = %v", rec.Notes)
	}

	cfg := ApplyRecommendations(DefaultConfig(), rec)
	if cfg.LLMBackoff != time.Second || cfg.DBMaxOpenConns != 7 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestAnalyzeQuiet(t *testing.T) {
	rec := Analyze(map[string]interface{}{
		"llm": map[string]interface{}{"requests": int64(3), "fallbacks": int64(3)},
	})
	if rec.IncreaseBackoff || len(rec.Notes) != 0 {
		t.Errorf("too few requests should not trigger: %+v", rec)
	}
}
