package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_CountersAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncSyncRuns()
	svc.IncSyncRuns()
	svc.IncPairingsResolved("chesscom")
	svc.IncPairingsResolved("manual")
	svc.IncPairingsResolved("chesscom")
	svc.IncFetchFailures()

	assert.Equal(t, 2.0, testutil.ToFloat64(svc.SyncRuns))
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.PairingsResolved.WithLabelValues("chesscom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.PairingsResolved.WithLabelValues("manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.FetchFailures))

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chess_sync_runs_total 2")
}
