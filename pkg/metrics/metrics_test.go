package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestNew_RegistersAllCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New("losat", reg)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]struct{}, len(families))
	for _, f := range families {
		names[f.GetName()] = struct{}{}
	}

	for _, want := range []string{
		"losat_queue_depth",
		"losat_active_workers",
		"losat_nodetable_size",
		"losat_unique_classifications_total",
		"losat_redundant_classifications_total",
	} {
		_, ok := names[want]
		require.Truef(t, ok, "expected registered metric %q", want)
	}

	c.QueueDepth.Set(7)
	require.Equal(t, float64(7), gaugeValue(t, c.QueueDepth))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New("losat", reg)
	require.Panics(t, func() {
		New("losat", reg)
	})
}
