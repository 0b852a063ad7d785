package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.Quote()
	m.Quote()
	m.Submission("sent")
	m.Submission("rejected")
	m.Submission("sent")
	m.Relayed("email", true)
	m.Relayed("telegram", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quotes))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayed.WithLabelValues("telegram", "failed")))
	assert.NotNil(t, m.Handler())
}
