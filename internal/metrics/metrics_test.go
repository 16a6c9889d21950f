package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySingleton(t *testing.T) {
	first := InitRegistry()
	second := GetRegistry()
	assert.Same(t, first, second)
}

func TestRecorderCounts(t *testing.T) {
	recorder := NewRecorder()
	recorder.GameProcessed("COMPLETE", "")
	recorder.GameProcessed("SKIPPED", "ratings_missing")
	recorder.BetGraded("spread", "WIN")
	RecordStaleQuote()
	RecordBacktestDuration(12.5)
	RecordRatingsSync("success", 1.2)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, body, "ncaam_backtest_games_processed_total")
	assert.Contains(t, body, `reason="ratings_missing"`)
	assert.Contains(t, body, `market="spread"`)
	assert.Contains(t, body, "ncaam_backtest_stale_quotes_total")
}
