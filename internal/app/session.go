package app

import (
	"context"

	"github.com/jwulff/groqscribe/internal/pipeline"
)

// Phase is the session's position in the credential → transcribe → analyze
// flow.
type Phase int

const (
	PhaseUnauthenticated Phase = iota
	PhaseAwaitingFile
	PhaseFileSelected
	PhaseTranscribing
	PhaseTranscribed
	PhaseAnalyzing
	PhaseAnalyzed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAwaitingFile:
		return "awaiting_file"
	case PhaseFileSelected:
		return "file_selected"
	case PhaseTranscribing:
		return "transcribing"
	case PhaseTranscribed:
		return "transcribed"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseAnalyzed:
		return "analyzed"
	default:
		return "unknown"
	}
}

// Busy reports whether a request is in flight for this phase.
func (p Phase) Busy() bool {
	return p == PhaseTranscribing || p == PhaseAnalyzing
}

// Ticket correlates a dispatched request with its completion. A completion
// is applied only while its ticket is still the current one.
type Ticket struct {
	// Epoch advances on every logout.
	Epoch uint64
	// Selection is the AudioSelection ID the request was made for.
	Selection string
	Seq       uint64
}

// Backend is the set of stages the controller drives.
// *pipeline.Pipeline implements it.
type Backend interface {
	Verify(ctx context.Context, key string) error
	LoadModels(ctx context.Context) ([]string, error)
	Transcribe(ctx context.Context, sel pipeline.AudioSelection) (string, error)
	Analyze(ctx context.Context, req pipeline.AnalysisRequest) (pipeline.AnalysisResult, error)
}
