package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestStoreRecords(t *testing.T) {
	m := NewStore()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, storeRequestsTotal.WithLabelValues("insert_blocks", "success"), func() {
		m.Observe("insert_blocks", nil, start)
	}); inc != 1 {
		t.Fatalf("expected store success counter increment, got %v", inc)
	}

	if inc := delta(t, storeRequestsTotal.WithLabelValues("insert_blocks", "error"), func() {
		m.Observe("insert_blocks", errors.New("boom"), start)
	}); inc != 1 {
		t.Fatalf("expected store error counter increment, got %v", inc)
	}
}

func TestNodeRecords(t *testing.T) {
	m := NewNode()
	start := time.Now().Add(-500 * time.Millisecond)

	if inc := delta(t, nodeRequestsTotal.WithLabelValues("block_by_hash", "success"), func() {
		m.Observe("block_by_hash", nil, start)
	}); inc != 1 {
		t.Fatalf("expected node success counter increment, got %v", inc)
	}
}

func TestDoctorRecords(t *testing.T) {
	m := NewDoctor()
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, doctorChecksTotal.WithLabelValues("find_missing_blocks", "success"), func() {
		m.Observe("find_missing_blocks", nil, start)
	}); inc != 1 {
		t.Fatalf("expected doctor success counter increment, got %v", inc)
	}
}

func TestSyncRecords(t *testing.T) {
	m := NewSync()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, syncEventsTotal.WithLabelValues("poll", "error"), func() {
		m.Observe("poll", errors.New("boom"), start)
	}); inc != 1 {
		t.Fatalf("expected sync error counter increment, got %v", inc)
	}
}
