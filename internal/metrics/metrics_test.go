package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lox/roshambo/internal/game"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.RoundCompleted(game.Win, 1200*time.Millisecond)
	m.RoundCompleted(game.Win, 1100*time.Millisecond)
	m.RoundCompleted(game.Draw, time.Second)
	m.RoundFailed("transport")
	m.ResetCompleted()
	m.ResetFailed("service")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.rounds.WithLabelValues("win")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.rounds.WithLabelValues("lose")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.roundErrors.WithLabelValues("transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets.WithLabelValues("service")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `roshambo_rounds_total{outcome="win"} 2`)
	assert.Contains(t, string(body), "roshambo_round_duration_seconds_count 3")
}
