package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	assert.Equal(t, "success", Result(nil))
	assert.Equal(t, "failure", Result(errors.New("boom")))
}

// TestObserveLedgerOperation 测试台账操作指标
func TestObserveLedgerOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("create_line_item", "success"))
	failBefore := testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("create_line_item", "failure"))

	ObserveLedgerOperation("create_line_item", nil, 0.01)
	ObserveLedgerOperation("create_line_item", nil, 0.02)
	ObserveLedgerOperation("create_line_item", errors.New("库存不足"), 0.03)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("create_line_item", "success")))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(LedgerOperationsTotal.WithLabelValues("create_line_item", "failure")))
}

func TestGauge(t *testing.T) {
	HTTPRequestsInProgress.Set(0)
	HTTPRequestsInProgress.Inc()
	HTTPRequestsInProgress.Inc()
	HTTPRequestsInProgress.Dec()
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsInProgress))
	HTTPRequestsInProgress.Set(0)
}

// TestHandler 测试/metrics端点输出
func TestHandler(t *testing.T) {
	InsufficientStockTotal.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "licoreria_insufficient_stock_total"), "输出中应包含库存不足指标")
}
