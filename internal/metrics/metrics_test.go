package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecorder_IndexDocumentIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.IndexDocument("widgets", "insert")
	r.IndexDocument("widgets", "insert")

	if got := counterValue(t, reg, "docudex_documents_indexed_total"); got != 2 {
		t.Fatalf("expected counter=2, got %v", got)
	}
}

func TestRecorder_NilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	r.IndexDocument("widgets", "insert")
	r.Search("widgets", time.Millisecond)
	r.SchemaConflict("widgets")
	r.SchemaPersistTick("written")
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += counterOrSum(m)
		}
	}
	return total
}

func counterOrSum(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	return 0
}
