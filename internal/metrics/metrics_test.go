package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric failed: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveLedgerIncrementsCounter(t *testing.T) {
	counter := LedgerOperationsTotal.WithLabelValues("redeem", OutcomeRejected)
	before := counterValue(t, counter)
	ObserveLedger("redeem", OutcomeRejected)
	if delta := counterValue(t, counter) - before; delta != 1 {
		t.Fatalf("expected counter +1, got delta %v", delta)
	}
}

func TestAddPointsUsesAbsoluteValue(t *testing.T) {
	counter := PointsTotal.WithLabelValues("REDEEM")
	before := counterValue(t, counter)
	AddPoints("REDEEM", -200)
	AddPoints("REDEEM", 0)
	if delta := counterValue(t, counter) - before; delta != 200 {
		t.Fatalf("expected +200, got delta %v", delta)
	}
}
