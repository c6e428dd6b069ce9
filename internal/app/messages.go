package app

import "github.com/jwulff/groqscribe/internal/pipeline"

// CredentialLoadedMsg carries the credential found in the store at startup.
type CredentialLoadedMsg struct {
	Token string
	OK    bool
}

// VerifiedMsg carries the outcome of a credential verification.
type VerifiedMsg struct {
	Ticket Ticket
	Key    string
	Err    error
}

// ModelsLoadedMsg carries the model catalog. Models is empty, never nil, on
// failure.
type ModelsLoadedMsg struct {
	Epoch  uint64
	Models []string
	Err    error
}

// FileSelectedMsg carries an inspected file choice. Only the most recent
// pick's ticket is honored.
type FileSelectedMsg struct {
	Ticket    Ticket
	Selection pipeline.AudioSelection
	Err       error
}

// TranscribeDoneMsg carries a finished transcription.
type TranscribeDoneMsg struct {
	Ticket Ticket
	Text   string
	Err    error
}

// AnalyzeDoneMsg carries a finished analysis.
type AnalyzeDoneMsg struct {
	Ticket Ticket
	Result pipeline.AnalysisResult
	Err    error
}
