package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := testutil.ToFloat64(availabilityDecisions.WithLabelValues("advanced", "rejected"))
	IncDecision("advanced", false)
	assert.Equal(t, before+1, testutil.ToFloat64(availabilityDecisions.WithLabelValues("advanced", "rejected")))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("bookings", "4xx"))
	IncHTTP("bookings", 409)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("bookings", "4xx")))

	IncTransition("Confirmed")
	IncConflict()
	ObserveLockWait(3 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(lockWait))
}

func TestCodeClass(t *testing.T) {
	assert.Equal(t, "2xx", codeClass(201))
	assert.Equal(t, "3xx", codeClass(304))
	assert.Equal(t, "4xx", codeClass(429))
	assert.Equal(t, "5xx", codeClass(503))
}
