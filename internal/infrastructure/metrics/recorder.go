package metrics

import (
	"time"

	"github.com/Azamsaif47/Alfred-app/internal/domain/agent"
	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
)

// Recorder feeds domain events into the Prometheus collectors.
type Recorder struct{}

var (
	_ agent.Recorder    = Recorder{}
	_ chat.Recorder     = Recorder{}
	_ citation.Recorder = Recorder{}
	_ history.Recorder  = Recorder{}
)

// NewRecorder returns the process-wide recorder.
func NewRecorder() Recorder {
	return Recorder{}
}

func (Recorder) RunFinished(outcome string, duration time.Duration) {
	AgentRunsTotal.WithLabelValues(outcome).Inc()
	AgentRunDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (Recorder) TurnPersisted(role conversation.Role) {
	TurnsPersistedTotal.WithLabelValues(string(role)).Inc()
}

func (Recorder) ToolCalled(tool string, failed bool) {
	status := "success"
	if failed {
		status = "error"
	}
	ToolCallsTotal.WithLabelValues(tool, status).Inc()
}

func (Recorder) EmptyOutputRetried() {
	EmptyOutputRetriesTotal.Inc()
}

func (Recorder) CitationsExtracted(n int) {
	CitationsExtractedTotal.Add(float64(n))
}

func (Recorder) CitationSkipped(reason string) {
	CitationSkipsTotal.WithLabelValues(reason).Inc()
}

func (Recorder) MetadataRepairFailed() {
	MetadataRepairFailuresTotal.Inc()
}
