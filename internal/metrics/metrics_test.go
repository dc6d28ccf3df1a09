package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncrementAITask(t *testing.T) {
	before := testutil.ToFloat64(AITaskTotal.WithLabelValues("analyze-rfp", OutcomeFallback))
	IncrementAITask("analyze-rfp", OutcomeFallback)
	after := testutil.ToFloat64(AITaskTotal.WithLabelValues("analyze-rfp", OutcomeFallback))
	assert.Equal(t, before+1, after)
}

func TestIncrementCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CacheLookupTotal.WithLabelValues("hit"))
	IncrementCacheLookup(true)
	assert.Equal(t, before+1, testutil.ToFloat64(CacheLookupTotal.WithLabelValues("hit")))
}
