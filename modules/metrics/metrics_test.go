package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })

	RegionLoads.WithLabelValues("ok").Inc()
	ObjectsCreated.WithLabelValues("test").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["mediakit_pixelregion_loads_total"])
	assert.True(t, names["mediakit_comobj_objects_created_total"])

	// Second registration on the same registry is a programming error.
	assert.Panics(t, func() { RegisterMetrics(reg) })
}
