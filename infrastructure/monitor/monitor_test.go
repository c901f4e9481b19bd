package monitor

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGrid(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordGrid(GridSnapshot{
		Levels:          10,
		LowerBound:      35000,
		UpperBound:      45000,
		Spacing:         1111.5,
		AdaptiveEnabled: true,
		IntervalSeconds: 300,
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(m.gridLevels))
	assert.Equal(t, 1111.5, testutil.ToFloat64(m.gridSpacing))
	assert.Equal(t, 35000.0, testutil.ToFloat64(m.gridLowerBound))
	assert.Equal(t, 45000.0, testutil.ToFloat64(m.gridUpperBound))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.adaptiveEnabled))
	assert.Equal(t, 300.0, testutil.ToFloat64(m.adaptiveInterval))

	m.RecordGrid(GridSnapshot{Levels: 2, AdaptiveEnabled: false})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.adaptiveEnabled))
}

func TestRecordLoad(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordLoad(true)
	m.RecordLoad(true)
	m.RecordLoad(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.loads))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loadFailures))
	assert.Greater(t, testutil.ToFloat64(m.lastLoad), 0.0)
}

func TestSetInfoReplacesLabels(t *testing.T) {
	m := New(DefaultConfig())
	m.SetInfo("binance", "BTCUSDT", "paper", "adaptive")
	m.SetInfo("binance", "ETHUSDT", "live", "fixed")

	assert.Equal(t, 1, testutil.CollectAndCount(m.configInfo))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configInfo.WithLabelValues("binance", "ETHUSDT", "live", "fixed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordHeartbeat()
	m.RecordGrid(GridSnapshot{Levels: 10})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "gridbot_config_grid_levels 10")
	assert.Contains(t, string(body), "gridbot_config_heartbeats_total 1")
}
