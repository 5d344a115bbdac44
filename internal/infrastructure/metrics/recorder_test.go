package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

func TestRecorderCountsEvents(t *testing.T) {
	r := NewRecorder()

	before := testutil.ToFloat64(TurnsPersistedTotal.WithLabelValues("Tool"))
	r.TurnPersisted(conversation.RoleTool)
	assert.Equal(t, before+1, testutil.ToFloat64(TurnsPersistedTotal.WithLabelValues("Tool")))

	before = testutil.ToFloat64(ToolCallsTotal.WithLabelValues("retriever", "error"))
	r.ToolCalled("retriever", true)
	assert.Equal(t, before+1, testutil.ToFloat64(ToolCallsTotal.WithLabelValues("retriever", "error")))

	before = testutil.ToFloat64(CitationsExtractedTotal)
	r.CitationsExtracted(3)
	assert.Equal(t, before+3, testutil.ToFloat64(CitationsExtractedTotal))

	before = testutil.ToFloat64(CitationSkipsTotal.WithLabelValues("no_match"))
	r.CitationSkipped("no_match")
	assert.Equal(t, before+1, testutil.ToFloat64(CitationSkipsTotal.WithLabelValues("no_match")))

	before = testutil.ToFloat64(AgentRunsTotal.WithLabelValues("success"))
	r.RunFinished("success", 2*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(AgentRunsTotal.WithLabelValues("success")))

	before = testutil.ToFloat64(MetadataRepairFailuresTotal)
	r.MetadataRepairFailed()
	assert.Equal(t, before+1, testutil.ToFloat64(MetadataRepairFailuresTotal))

	before = testutil.ToFloat64(EmptyOutputRetriesTotal)
	r.EmptyOutputRetried()
	assert.Equal(t, before+1, testutil.ToFloat64(EmptyOutputRetriesTotal))
}
