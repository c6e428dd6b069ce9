// Package api is the request gateway to the transcription backend: the wire
// types, credential injection, and failure classification.
package api

import "encoding/json"

// Backend endpoints.
const (
	PathVerify     = "/verify-api-key"
	PathTranscribe = "/transcribe"
	PathAnalyze    = "/analyze"
	PathModels     = "/models"
)

// Form field names used by the backend.
const (
	FieldFile          = "file"
	FieldTranscription = "transcription"
	FieldModel         = "model"
	FieldCustomPrompt  = "custom_prompt"
)

// VerifyRequest is the JSON body of PathVerify.
type VerifyRequest struct {
	APIKey string `json:"api_key"`
}

// VerifyResponse is returned by PathVerify on success.
type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// TranscriptionResponse is returned by PathTranscribe.
type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
}

// AnalysisResponse is returned by PathAnalyze.
type AnalysisResponse struct {
	Transcription      string   `json:"transcription"`
	Meaning            string   `json:"meaning"`
	Sentiment          string   `json:"sentiment"`
	Themes             []string `json:"themes"`
	AdditionalInsights *string  `json:"additional_insights,omitempty"`
}

// ModelsResponse is returned by PathModels.
type ModelsResponse struct {
	Models []string `json:"models"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}
